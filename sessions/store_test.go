package sessions_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/internal/utils"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/token/jwt"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewHMACSigner("secret").Sign(jwtlib.MapClaims{"sub": "ada@example.edu", "exp": exp.Unix()})
	require.NoError(t, err)
	return token
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	user := &sessions.UserProfile{FullName: "Ada Lovelace", Email: "ada@example.edu", GroupNumber: utils.Ptr(123456)}

	t.Run("anonymous", func(t *testing.T) {
		store := sessions.NewStore(kv.NewMemoryStore())

		sess, err := store.Get(ctx)
		require.NoError(t, err)
		require.Nil(t, sess)

		token, err := store.Token(ctx)
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("set and get", func(t *testing.T) {
		store := sessions.NewStore(kv.NewMemoryStore())
		sess := &sessions.Session{AccessToken: testToken(t, exp), User: user}
		require.NoError(t, store.Set(ctx, sess))
		require.True(t, exp.Equal(sess.ExpiresAt))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, sess.AccessToken, got.AccessToken)
		require.Equal(t, user, got.User)
		require.True(t, exp.Equal(got.ExpiresAt))
		require.False(t, got.ExpiresWithin(time.Now(), 5*time.Minute))
	})

	t.Run("user json contract", func(t *testing.T) {
		backing := kv.NewMemoryStore()
		store := sessions.NewStore(backing)
		require.NoError(t, store.SetUser(ctx, user))

		raw, err := backing.Get(ctx, sessions.UserKey)
		require.NoError(t, err)
		require.JSONEq(t, `{"fullName":"Ada Lovelace","email":"ada@example.edu","groupNumber":123456}`, raw)
	})

	t.Run("undecodable token clears session", func(t *testing.T) {
		backing := kv.NewMemoryStore()
		require.NoError(t, backing.Set(ctx, sessions.TokenKey, "garbage"))
		require.NoError(t, backing.Set(ctx, sessions.UserKey, `{"email":"ada@example.edu"}`))
		store := sessions.NewStore(backing)

		sess, err := store.Get(ctx)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		require.Nil(t, sess)

		_, err = backing.Get(ctx, sessions.TokenKey)
		require.ErrorIs(t, err, kv.ErrNotFound)
		_, err = backing.Get(ctx, sessions.UserKey)
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set rejects malformed token", func(t *testing.T) {
		store := sessions.NewStore(kv.NewMemoryStore())
		err := store.Set(ctx, &sessions.Session{AccessToken: "a.b"})
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)

		token, err := store.Token(ctx)
		require.NoError(t, err)
		require.Empty(t, token)
	})

	t.Run("clear leaves other keys", func(t *testing.T) {
		backing := kv.NewMemoryStore()
		store := sessions.NewStore(backing)
		require.NoError(t, store.Set(ctx, &sessions.Session{AccessToken: testToken(t, exp), User: user}))
		require.NoError(t, backing.Set(ctx, "chat_history_assistant", "[]"))

		require.NoError(t, store.Clear(ctx))

		sess, err := store.Get(ctx)
		require.NoError(t, err)
		require.Nil(t, sess)
		_, err = backing.Get(ctx, "chat_history_assistant")
		require.NoError(t, err)
	})
}
