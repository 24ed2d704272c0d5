package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
)

const (
	// DefaultMaxHistory is how many messages each mode keeps.
	DefaultMaxHistory = 50

	historyKeyPrefix = "chat_history_"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// History persists each mode's messages under chat_history_<mode>, keeping
// only the newest max entries.
type History struct {
	kv  kv.Store
	max int
}

func NewHistory(store kv.Store, max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{kv: store, max: max}
}

func HistoryKey(mode Mode) string {
	return historyKeyPrefix + string(mode)
}

// Load returns the mode's messages, oldest first.
func (h *History) Load(ctx context.Context, mode Mode) ([]Message, error) {
	raw, err := h.kv.Get(ctx, HistoryKey(mode))
	if apperrors.Is(err, kv.ErrNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s history: %w", mode, err)
	}

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("parse %s history: %w", mode, err)
	}
	return msgs, nil
}

// Append adds msgs and drops the oldest entries beyond the cap.
func (h *History) Append(ctx context.Context, mode Mode, msgs ...Message) error {
	existing, err := h.Load(ctx, mode)
	if err != nil {
		return err
	}

	all := append(existing, msgs...)
	if len(all) > h.max {
		all = all[len(all)-h.max:]
	}

	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if err := h.kv.Set(ctx, HistoryKey(mode), string(data)); err != nil {
		return fmt.Errorf("write %s history: %w", mode, err)
	}
	return nil
}

func (h *History) Clear(ctx context.Context, mode Mode) error {
	return h.kv.Delete(ctx, HistoryKey(mode))
}

// Stored lists the modes that have a saved history.
func (h *History) Stored(ctx context.Context) ([]Mode, error) {
	keys, err := h.kv.Keys(ctx, historyKeyPrefix)
	if err != nil {
		return nil, err
	}
	modes := make([]Mode, 0, len(keys))
	for _, k := range keys {
		modes = append(modes, Mode(k[len(historyKeyPrefix):]))
	}
	return modes, nil
}
