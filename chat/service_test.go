package chat_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/jrsteele09/uniassist/chat"
	"github.com/jrsteele09/uniassist/internal/config"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*chat.Service, *authclient.Client) {
	t.Helper()
	srv := httptest.NewServer(backendfake.New(config.NewBackend()))
	t.Cleanup(srv.Close)

	store := kv.NewMemoryStore()
	client, err := authclient.New(srv.URL, sessions.NewStore(store))
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "dev:alan@uni.example")
	require.NoError(t, err)

	return chat.NewService(client, chat.NewHistory(store, chat.DefaultMaxHistory), zerolog.Nop()), client
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("records the exchange", func(t *testing.T) {
		svc, _ := newService(t)

		reply, err := svc.Ask(ctx, chat.ModeAssistant, "hello there")
		require.NoError(t, err)
		require.Equal(t, "You said: hello there", reply.Answer)

		msgs, err := svc.History().Load(ctx, chat.ModeAssistant)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		require.Equal(t, chat.RoleUser, msgs[0].Role)
		require.Equal(t, "hello there", msgs[0].Content)
		require.Equal(t, chat.RoleAssistant, msgs[1].Role)
		require.Equal(t, reply.Answer, msgs[1].Content)
	})

	t.Run("rejects bad input locally", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Ask(ctx, chat.Mode("poetry"), "hi")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		_, err = svc.Ask(ctx, chat.ModeAssistant, "   ")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("failure leaves history alone", func(t *testing.T) {
		svc, client := newService(t)
		require.NoError(t, client.Logout(ctx))

		_, err := svc.Ask(ctx, chat.ModeSchedule, "what's on today")
		require.True(t, apperrors.IsAuthError(err))

		msgs, err := svc.History().Load(ctx, chat.ModeSchedule)
		require.NoError(t, err)
		require.Empty(t, msgs)
	})
}
