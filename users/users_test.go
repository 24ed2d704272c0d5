package users_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/jrsteele09/uniassist/internal/config"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/internal/utils"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/users"
	"github.com/stretchr/testify/require"
)

// countingAPI records calls so tests can prove validation happens first.
type countingAPI struct {
	users.API
	calls int
}

func (c *countingAPI) DoJSON(ctx context.Context, method, path string, in, out any) error {
	c.calls++
	return c.API.DoJSON(ctx, method, path, in, out)
}

func setup(t *testing.T) (*users.Service, *sessions.Store, *countingAPI) {
	t.Helper()
	srv := httptest.NewServer(backendfake.New(config.NewBackend()))
	t.Cleanup(srv.Close)

	store := sessions.NewStore(kv.NewMemoryStore())
	client, err := authclient.New(srv.URL, store)
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "dev:grace@uni.example")
	require.NoError(t, err)

	counting := &countingAPI{API: client}
	return users.NewService(counting, store), store, counting
}

func TestValidateGroupNumber(t *testing.T) {
	require.NoError(t, users.ValidateGroupNumber(nil))
	require.NoError(t, users.ValidateGroupNumber(utils.Ptr(123456)))
	require.NoError(t, users.ValidateGroupNumber(utils.Ptr(999999)))

	for _, n := range []int{12345, 1234567, 0, -123456} {
		require.ErrorIs(t, users.ValidateGroupNumber(utils.Ptr(n)), apperrors.ErrInvalidInput, n)
	}
}

func TestParseGroupNumber(t *testing.T) {
	n, err := users.ParseGroupNumber(" 123456 ")
	require.NoError(t, err)
	require.Equal(t, 123456, n)

	for _, s := range []string{"12345", "1234567", "012345", "abcdef", ""} {
		_, err := users.ParseGroupNumber(s)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput, s)
	}
}

func TestMe(t *testing.T) {
	svc, store, _ := setup(t)

	me, err := svc.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "grace@uni.example", me.Email)

	stored, err := store.User(context.Background())
	require.NoError(t, err)
	require.Equal(t, me, stored)
}

func TestUpdateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("set and clear", func(t *testing.T) {
		svc, store, _ := setup(t)

		user, err := svc.UpdateGroup(ctx, utils.Ptr(123456))
		require.NoError(t, err)
		require.Equal(t, 123456, utils.Value(user.GroupNumber))

		stored, err := store.User(ctx)
		require.NoError(t, err)
		require.Equal(t, 123456, utils.Value(stored.GroupNumber))

		user, err = svc.UpdateGroup(ctx, nil)
		require.NoError(t, err)
		require.Nil(t, user.GroupNumber)
	})

	t.Run("invalid numbers never reach the network", func(t *testing.T) {
		svc, _, counting := setup(t)

		for _, n := range []int{12345, 1234567} {
			_, err := svc.UpdateGroup(ctx, utils.Ptr(n))
			require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		}
		require.Zero(t, counting.calls)
	})
}
