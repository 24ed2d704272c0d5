package authclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/sessions"
)

// Login exchanges a Google ID token for a backend session and persists it.
func (c *Client) Login(ctx context.Context, googleIDToken string) (*sessions.Session, error) {
	if googleIDToken == "" {
		return nil, fmt.Errorf("%w: google id token is empty", apperrors.ErrInvalidInput)
	}

	body, err := jsonBody(api.GoogleAuthRequest{Token: googleIDToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(api.RouteAuthGoogle), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out api.AuthResponse
	if err := c.doRaw(req, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	// A previous user's profile must not survive a login that omits one.
	if err := c.sessions.Clear(ctx); err != nil {
		return nil, err
	}
	sess := &sessions.Session{AccessToken: out.Token, User: out.User}
	if err := c.sessions.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	c.log.Info().Str("email", userEmail(sess.User)).Time("expires_at", sess.ExpiresAt).Msg("Logged in")
	return sess, nil
}

// Logout tells the backend the session is over, best effort, and always
// clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.sessions.Token(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to read token for logout")
	}

	if token != "" {
		if err := c.notifyLogout(ctx, token); err != nil {
			c.log.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
		}
	}
	return c.sessions.Clear(context.WithoutCancel(ctx))
}

func (c *Client) notifyLogout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(api.RouteAuthLogout), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.doRaw(req, nil)
}

// Session returns the current session, or nil when anonymous.
func (c *Client) Session(ctx context.Context) (*sessions.Session, error) {
	return c.sessions.Get(ctx)
}

// IsAuthenticated reports whether a decodable token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	sess, err := c.sessions.Get(ctx)
	return err == nil && sess != nil
}

func userEmail(u *sessions.UserProfile) string {
	if u == nil {
		return ""
	}
	return u.Email
}
