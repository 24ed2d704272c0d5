// Package authclient decorates an HTTP transport with the assistant's session
// handling: bearer injection, proactive refresh, a single refresh-and-retry on
// 401 and session teardown when the session cannot be recovered.
package authclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/token/jwt"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Doer sends a single HTTP request. *http.Client satisfies it, and so does
// *Client, so callers depend on the interface rather than on either.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the authenticated transport. It reads and writes the session
// exclusively through the injected sessions.Store.
type Client struct {
	baseURL      *url.URL
	raw          Doer
	sessions     *sessions.Store
	expiryBuffer time.Duration
	now          func() time.Time
	log          zerolog.Logger

	singleFlight bool
	refreshGroup singleflight.Group
	refreshing   atomic.Int32
}

type Option func(*Client)

// WithTransport sets the underlying transport. Defaults to a plain *http.Client.
func WithTransport(d Doer) Option {
	return func(c *Client) { c.raw = d }
}

// WithExpiryBuffer sets how long before exp a token counts as expiring.
func WithExpiryBuffer(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.expiryBuffer = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSingleFlightRefresh coalesces concurrent refreshes into one backend
// call whose result every caller shares.
func WithSingleFlightRefresh() Option {
	return func(c *Client) { c.singleFlight = true }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, store *sessions.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	c := &Client{
		baseURL:      u,
		raw:          &http.Client{},
		sessions:     store,
		expiryBuffer: jwt.DefaultExpiryBuffer,
		now:          time.Now,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend origin requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Sessions exposes the store the client owns the session through.
func (c *Client) Sessions() *sessions.Store {
	return c.sessions
}

func (c *Client) endpoint(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.baseURL.String() + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// resolve makes a relative request URL absolute against the backend origin.
func (c *Client) resolve(req *http.Request) *http.Request {
	if req.URL.IsAbs() {
		return req
	}
	r := req.Clone(req.Context())
	r.URL = c.baseURL.ResolveReference(req.URL)
	r.Host = r.URL.Host
	return r
}

// sameOrigin compares scheme, host and port, with default ports made explicit.
func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.baseURL.Scheme) &&
		strings.EqualFold(u.Hostname(), c.baseURL.Hostname()) &&
		effectivePort(u) == effectivePort(c.baseURL)
}

func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}
