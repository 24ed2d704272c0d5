package authclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/authclient"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Run("persists session", func(t *testing.T) {
		b := newBackend(t)
		c, _ := newClient(t, b, "")
		require.Equal(t, authclient.StateAnonymous, c.State(context.Background()))

		sess, err := c.Login(context.Background(), "google-id-token")
		require.NoError(t, err)
		require.Equal(t, testUser.Email, sess.User.Email)
		require.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

		require.True(t, c.IsAuthenticated(context.Background()))
		stored, err := c.Session(context.Background())
		require.NoError(t, err)
		require.Equal(t, sess.AccessToken, stored.AccessToken)
		require.Equal(t, testUser.FullName, stored.User.FullName)
	})

	t.Run("empty id token", func(t *testing.T) {
		b := newBackend(t)
		c, _ := newClient(t, b, "")

		_, err := c.Login(context.Background(), "")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Empty(t, b.all())
	})

	t.Run("rejected by backend", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid google token", http.StatusUnauthorized)
		}))
		defer srv.Close()
		c, err := authclient.New(srv.URL, sessions.NewStore(kv.NewMemoryStore()))
		require.NoError(t, err)

		_, err = c.Login(context.Background(), "forged")
		var failed *apperrors.RequestFailedError
		require.ErrorAs(t, err, &failed)
		require.Equal(t, "invalid google token", failed.Body)
		require.False(t, c.IsAuthenticated(context.Background()))
	})

	t.Run("undecodable backend token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, api.AuthResponse{Token: "opaque", User: testUser})
		}))
		defer srv.Close()
		c, err := authclient.New(srv.URL, sessions.NewStore(kv.NewMemoryStore()))
		require.NoError(t, err)

		_, err = c.Login(context.Background(), "google-id-token")
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		require.False(t, c.IsAuthenticated(context.Background()))
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears even when backend fails", func(t *testing.T) {
		b := newBackend(t)
		b.handle("POST "+api.RouteAuthLogout, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		token := tokenExpiringIn(t, time.Hour)
		c, store := newClient(t, b, token)

		require.NoError(t, c.Logout(context.Background()))
		requireCleared(t, store)

		seen := b.requests(api.RouteAuthLogout)
		require.Len(t, seen, 1)
		require.Equal(t, "Bearer "+token, seen[0].Auth)
	})

	t.Run("anonymous", func(t *testing.T) {
		b := newBackend(t)
		c, _ := newClient(t, b, "")

		require.NoError(t, c.Logout(context.Background()))
		require.Empty(t, b.all())
	})

	t.Run("keeps unrelated keys", func(t *testing.T) {
		b := newBackend(t)
		b.handle("POST "+api.RouteAuthLogout, func(w http.ResponseWriter, r *http.Request) {})
		c, store := newClient(t, b, tokenExpiringIn(t, time.Hour))
		require.NoError(t, store.Set(context.Background(), "last_greeting", "2026-01-01T09:00:00Z"))

		require.NoError(t, c.Logout(context.Background()))
		_, err := store.Get(context.Background(), "last_greeting")
		require.NoError(t, err)
	})
}

func TestRunBackgroundRefresh(t *testing.T) {
	t.Run("refreshes expiring token", func(t *testing.T) {
		b := newBackend(t)
		old := tokenExpiringIn(t, 3*time.Minute)
		c, store := newClient(t, b, old)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			c.RunBackgroundRefresh(ctx, 10*time.Millisecond)
			close(done)
		}()

		require.Eventually(t, func() bool {
			token, err := store.Get(context.Background(), sessions.TokenKey)
			return err == nil && token != old
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		<-done
		require.EqualValues(t, 1, b.refreshCalls.Load())
	})

	t.Run("leaves fresh token alone", func(t *testing.T) {
		b := newBackend(t)
		c, _ := newClient(t, b, tokenExpiringIn(t, time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		c.RunBackgroundRefresh(ctx, 10*time.Millisecond)
		require.Zero(t, b.refreshCalls.Load())
	})

	t.Run("failure is logged and clears session", func(t *testing.T) {
		b := newBackend(t)
		b.refreshStatus.Store(http.StatusBadGateway)
		c, store := newClient(t, b, tokenExpiringIn(t, time.Minute))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			c.RunBackgroundRefresh(ctx, 10*time.Millisecond)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return !c.IsAuthenticated(context.Background())
		}, 2*time.Second, 10*time.Millisecond)
		cancel()
		<-done

		requireCleared(t, store)
		require.EqualValues(t, 1, b.refreshCalls.Load())
	})
}
