// Package backendfake is an in-memory implementation of the assistant
// backend's HTTP API, used by tests and by cmd/devbackend for local work.
package backendfake

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/uniassist/internal/config"
	"github.com/jrsteele09/uniassist/token/jwt"
	"github.com/rs/zerolog"
)

// DefaultRefreshOverlap is how long a replaced token can still be used.
const DefaultRefreshOverlap = 30 * time.Second

type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	log     zerolog.Logger
	origins config.AllowedOrigins

	tokens   *jwt.Creator
	grace    time.Duration
	overlap  time.Duration
	identity IdentityVerifier
	revoked  RevokedTokenCache
	data     *memoryData

	refreshCalls  atomic.Int32
	refreshStatus atomic.Int32 // 0 means refresh succeeds
	rejectTokens  atomic.Bool
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithRefreshOverlap sets how long a token replaced by refresh stays usable,
// so concurrent refreshes of the same token all succeed. Default 30s.
func WithRefreshOverlap(d time.Duration) Option {
	return func(s *Server) { s.overlap = d }
}

// WithIdentityVerifier sets how Google ID tokens are checked on login.
func WithIdentityVerifier(v IdentityVerifier) Option {
	return func(s *Server) { s.identity = v }
}

// New builds the fake from backend config. Without WithIdentityVerifier only
// DevVerifier tokens are accepted.
func New(cfg config.BackendConfig, opts ...Option) *Server {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		log:      zerolog.Nop(),
		origins:  cfg.GetAllowedOrigins(),
		tokens:   jwt.NewCreator(cfg.GetAppName(), cfg.GetAccessTokenExpiry(), jwt.NewHMACSigner(cfg.GetJWTSecret())),
		grace:    cfg.GetRefreshGracePeriod(),
		overlap:  DefaultRefreshOverlap,
		identity: DevVerifier{},
		revoked:  NewInMemoryRevokedTokenCache(),
		data:     newMemoryData(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "devbackend").Logger()

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.log.Debug().Str("method", method).Str("path", path).Msg("Route registered")
	}
}

// RefreshCalls is the number of refresh requests received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// FailRefresh makes every refresh answer with status; 0 restores success.
func (s *Server) FailRefresh(status int) {
	s.refreshStatus.Store(int32(status))
}

// RejectTokens makes protected routes answer 401 regardless of the token.
func (s *Server) RejectTokens(reject bool) {
	s.rejectTokens.Store(reject)
}

// IssueToken signs an access token for email expiring at exp and registers
// the user if needed.
func (s *Server) IssueToken(email, name string, exp time.Time) (string, error) {
	s.data.upsertUser(email, name, "")
	return s.tokens.CreateAccessTokenExpiring(jwt.Subject{Email: email, Name: name}, exp)
}
