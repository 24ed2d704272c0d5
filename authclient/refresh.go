package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/sessions"
)

const refreshFlightKey = "session"

// Refresh exchanges the stored token for a new one. A rejected or
// unreachable refresh clears the session and returns an error wrapping
// ErrRefreshFailed; a cancelled ctx leaves the session in place. With
// single-flight enabled, concurrent callers share one backend call.
func (c *Client) Refresh(ctx context.Context) (*sessions.Session, error) {
	return c.refreshAfter(ctx, "")
}

// refreshAfter refreshes the session unless the stored token is no longer
// stale, i.e. another caller already replaced it with a fresh one.
func (c *Client) refreshAfter(ctx context.Context, stale string) (*sessions.Session, error) {
	if !c.singleFlight {
		return c.refresh(ctx, stale)
	}

	// The shared call must not die with whichever caller started it.
	v, err, shared := c.refreshGroup.Do(refreshFlightKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), stale)
	})
	if shared {
		c.log.Debug().Msg("Joined in-flight token refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*sessions.Session), nil
}

func (c *Client) refresh(ctx context.Context, stale string) (*sessions.Session, error) {
	c.refreshing.Add(1)
	defer c.refreshing.Add(-1)

	current, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}
	if current == nil {
		return nil, fmt.Errorf("refresh: %w", apperrors.ErrAuthenticationRequired)
	}
	if stale != "" && current.AccessToken != stale && !current.ExpiresWithin(c.now(), c.expiryBuffer) {
		return current, nil
	}

	sess, err := c.exchangeRefresh(ctx, current.AccessToken)
	if err != nil && ctx.Err() != nil {
		// The caller gave up; the backend never rejected the token.
		c.log.Debug().Err(err).Msg("Token refresh abandoned by caller")
		return nil, fmt.Errorf("refresh interrupted: %w", ctx.Err())
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("Token refresh failed, clearing session")
		if clearErr := c.sessions.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			c.log.Error().Err(clearErr).Msg("Failed to clear session")
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	c.log.Debug().Time("expires_at", sess.ExpiresAt).Msg("Access token refreshed")
	return sess, nil
}

func (c *Client) exchangeRefresh(ctx context.Context, token string) (*sessions.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(api.RouteAuthRefresh), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out api.AuthResponse
	if err := c.doRaw(req, &out); err != nil {
		return nil, err
	}

	sess := &sessions.Session{AccessToken: out.Token, User: out.User}
	if err := c.sessions.Set(ctx, sess); err != nil {
		return nil, err
	}
	if sess.User == nil {
		if sess.User, err = c.sessions.User(ctx); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// doRaw sends req on the undecorated transport and decodes a JSON reply.
func (c *Client) doRaw(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.raw.Do(req)
	if err != nil {
		return err
	}
	if err := CheckResponse(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		drain(resp)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// RefreshIfExpiring refreshes when the stored token expires within the
// expiry buffer plus window. It reports whether a refresh happened.
func (c *Client) RefreshIfExpiring(ctx context.Context, window time.Duration) (bool, error) {
	current, err := c.sessions.Get(ctx)
	if err != nil || current == nil {
		return false, err
	}
	if !current.ExpiresWithin(c.now(), c.expiryBuffer+window) {
		return false, nil
	}
	if _, err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func jsonBody(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
