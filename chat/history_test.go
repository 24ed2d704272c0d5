package chat_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/chat"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := chat.ParseMode(" Knowledge ")
	require.NoError(t, err)
	require.Equal(t, chat.ModeKnowledge, m)

	_, err = chat.ParseMode("poetry")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		h := chat.NewHistory(kv.NewMemoryStore(), 0)
		msgs, err := h.Load(ctx, chat.ModeAssistant)
		require.NoError(t, err)
		require.Empty(t, msgs)
	})

	t.Run("keeps the newest fifty", func(t *testing.T) {
		h := chat.NewHistory(kv.NewMemoryStore(), chat.DefaultMaxHistory)
		for i := 0; i < 60; i++ {
			require.NoError(t, h.Append(ctx, chat.ModeAssistant, chat.Message{Role: chat.RoleUser, Content: fmt.Sprint(i)}))
		}

		msgs, err := h.Load(ctx, chat.ModeAssistant)
		require.NoError(t, err)
		require.Len(t, msgs, 50)
		require.Equal(t, "10", msgs[0].Content)
		require.Equal(t, "59", msgs[49].Content)
	})

	t.Run("modes are separate", func(t *testing.T) {
		store := kv.NewMemoryStore()
		h := chat.NewHistory(store, 10)
		require.NoError(t, h.Append(ctx, chat.ModeSchedule, chat.Message{Role: chat.RoleUser, Content: "when is physics"}))
		require.NoError(t, h.Append(ctx, chat.ModeKnowledge, chat.Message{Role: chat.RoleUser, Content: "entropy"}))

		_, err := store.Get(ctx, "chat_history_schedule")
		require.NoError(t, err)

		modes, err := h.Stored(ctx)
		require.NoError(t, err)
		require.Equal(t, []chat.Mode{chat.ModeKnowledge, chat.ModeSchedule}, modes)

		require.NoError(t, h.Clear(ctx, chat.ModeSchedule))
		msgs, err := h.Load(ctx, chat.ModeSchedule)
		require.NoError(t, err)
		require.Empty(t, msgs)
		msgs, err = h.Load(ctx, chat.ModeKnowledge)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
	})

	t.Run("stored layout", func(t *testing.T) {
		store := kv.NewMemoryStore()
		h := chat.NewHistory(store, 10)
		at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
		require.NoError(t, h.Append(ctx, chat.ModeKnowledge, chat.Message{Role: chat.RoleAssistant, Content: "see notes", Sources: []string{"notes.txt"}, CreatedAt: at}))

		raw, err := store.Get(ctx, chat.HistoryKey(chat.ModeKnowledge))
		require.NoError(t, err)
		require.JSONEq(t, `[{"role":"assistant","content":"see notes","sources":["notes.txt"],"createdAt":"2026-10-19T09:30:00Z"}]`, raw)
	})
}

func TestGreeter(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	now := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	g := chat.NewGreeter(store, func() time.Time { return now })

	greet, err := g.ShouldGreet(ctx)
	require.NoError(t, err)
	require.True(t, greet)

	require.NoError(t, g.MarkGreeted(ctx))
	greet, err = g.ShouldGreet(ctx)
	require.NoError(t, err)
	require.False(t, greet)

	now = now.Add(15 * time.Hour) // 23:30, same day
	greet, err = g.ShouldGreet(ctx)
	require.NoError(t, err)
	require.False(t, greet)

	now = now.Add(time.Hour) // past midnight
	greet, err = g.ShouldGreet(ctx)
	require.NoError(t, err)
	require.True(t, greet)

	require.NoError(t, store.Set(ctx, "last_greeting", "yesterday-ish"))
	greet, err = g.ShouldGreet(ctx)
	require.NoError(t, err)
	require.True(t, greet)
}
