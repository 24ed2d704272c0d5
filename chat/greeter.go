package chat

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
)

const lastGreetingKey = "last_greeting"

// Greeter decides whether the daily greeting is due.
type Greeter struct {
	kv  kv.Store
	now func() time.Time
}

func NewGreeter(store kv.Store, now func() time.Time) *Greeter {
	if now == nil {
		now = time.Now
	}
	return &Greeter{kv: store, now: now}
}

// ShouldGreet is true when no greeting was shown on the current calendar
// day, in now's location. An unreadable timestamp counts as never greeted.
func (g *Greeter) ShouldGreet(ctx context.Context) (bool, error) {
	raw, err := g.kv.Get(ctx, lastGreetingKey)
	if apperrors.Is(err, kv.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read last greeting: %w", err)
	}

	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true, nil
	}
	now := g.now()
	return !sameDay(last.In(now.Location()), now), nil
}

func (g *Greeter) MarkGreeted(ctx context.Context) error {
	return g.kv.Set(ctx, lastGreetingKey, g.now().Format(time.RFC3339))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
