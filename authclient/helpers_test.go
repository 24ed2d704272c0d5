package authclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/token/jwt"
	"github.com/stretchr/testify/require"
)

var testUser = &sessions.UserProfile{FullName: "Ada Lovelace", Email: "ada@uni.example"}

var creator = jwt.NewCreator("test-backend", time.Hour, jwt.NewHMACSigner("test-secret"))

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	token, err := creator.CreateAccessTokenExpiring(jwt.Subject{Email: testUser.Email, Name: testUser.FullName}, time.Now().Add(d))
	require.NoError(t, err)
	return token
}

type seenRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// backend is a scripted stand-in for the assistant API. Handlers for
// protected paths are registered per test; auth endpoints are built in.
type backend struct {
	t   *testing.T
	srv *httptest.Server
	mux *http.ServeMux

	mu   sync.Mutex
	seen []seenRequest

	refreshCalls  atomic.Int32
	refreshStatus atomic.Int32
	refreshDelay  atomic.Int64
	refreshTokens chan string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, mux: http.NewServeMux(), refreshTokens: make(chan string, 16)}
	b.refreshStatus.Store(http.StatusOK)

	b.mux.HandleFunc("POST "+api.RouteAuthRefresh, func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		time.Sleep(time.Duration(b.refreshDelay.Load()))
		if status := int(b.refreshStatus.Load()); status != http.StatusOK {
			http.Error(w, "refresh rejected", status)
			return
		}
		token := tokenExpiringIn(t, time.Hour)
		b.refreshTokens <- token
		writeJSON(w, api.AuthResponse{Token: token})
	})
	b.mux.HandleFunc("POST "+api.RouteAuthGoogle, func(w http.ResponseWriter, r *http.Request) {
		var in api.GoogleAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
			http.Error(w, "bad id token", http.StatusBadRequest)
			return
		}
		writeJSON(w, api.AuthResponse{Token: tokenExpiringIn(t, time.Hour), User: testUser})
	})

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.seen = append(b.seen, seenRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(body)})
		b.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(pattern string, h http.HandlerFunc) {
	b.mux.HandleFunc(pattern, h)
}

func (b *backend) all() []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]seenRequest(nil), b.seen...)
}

func (b *backend) requests(path string) []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []seenRequest
	for _, r := range b.seen {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *backend) lastRefreshToken() string {
	select {
	case token := <-b.refreshTokens:
		return token
	default:
		b.t.Fatal("no refresh token was issued")
		return ""
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newClient returns a client over an in-memory store seeded with token and
// testUser when token is not empty.
func newClient(t *testing.T, b *backend, token string, opts ...authclient.Option) (*authclient.Client, kv.Store) {
	t.Helper()
	store := kv.NewMemoryStore()
	sessionStore := sessions.NewStore(store)
	if token != "" {
		require.NoError(t, store.Set(context.Background(), sessions.TokenKey, token))
		require.NoError(t, sessionStore.SetUser(context.Background(), testUser))
	}

	c, err := authclient.New(b.srv.URL, sessionStore, opts...)
	require.NoError(t, err)
	return c, store
}

func requireCleared(t *testing.T, store kv.Store) {
	t.Helper()
	keys, err := store.Keys(context.Background(), "")
	require.NoError(t, err)
	require.NotContains(t, keys, sessions.TokenKey)
	require.NotContains(t, keys, sessions.UserKey)
}
