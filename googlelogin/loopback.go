package googlelogin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const callbackPath = "/callback"

// Verifier checks an ID token. *oidc.IDTokenVerifier satisfies it.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// LoopbackFlow runs the OAuth2 authorization-code flow with PKCE for an
// installed app: the browser is sent to Google and redirected back to a
// listener on the loopback interface.
type LoopbackFlow struct {
	config     oauth2.Config
	verifier   Verifier
	listenAddr string
	openURL    func(string) error
	log        zerolog.Logger
}

type Option func(*LoopbackFlow)

// WithEndpoint replaces Google's endpoints, for tests.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(f *LoopbackFlow) { f.config.Endpoint = e }
}

// WithVerifier checks the ID token before it is handed out.
func WithVerifier(v Verifier) Option {
	return func(f *LoopbackFlow) { f.verifier = v }
}

// WithBrowser sets how the authorization URL is shown to the user.
func WithBrowser(open func(url string) error) Option {
	return func(f *LoopbackFlow) { f.openURL = open }
}

func WithListenAddr(addr string) Option {
	return func(f *LoopbackFlow) { f.listenAddr = addr }
}

func WithLogger(log zerolog.Logger) Option {
	return func(f *LoopbackFlow) { f.log = log }
}

func NewLoopbackFlow(clientID, clientSecret string, opts ...Option) *LoopbackFlow {
	f := &LoopbackFlow{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.Google,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		listenAddr: "127.0.0.1:0",
		openURL:    func(string) error { return errors.New("no browser configured") },
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewGoogleVerifier discovers Google's keys and checks tokens for clientID.
func NewGoogleVerifier(ctx context.Context, clientID string) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: clientID}), nil
}

type callbackResult struct {
	code string
	err  error
}

// IDToken blocks until the user finishes the browser flow or ctx ends.
func (f *LoopbackFlow) IDToken(ctx context.Context) (string, error) {
	if f.config.ClientID == "" {
		return "", errors.New("google client id is not configured")
	}

	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return "", fmt.Errorf("listen for oauth callback: %w", err)
	}
	cfg := f.config
	cfg.RedirectURL = "http://" + ln.Addr().String() + callbackPath

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	srv := &http.Server{Handler: callbackHandler(state, results)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- callbackResult{err: err}
		}
	}()
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	f.log.Debug().Str("redirect", cfg.RedirectURL).Msg("Waiting for Google sign-in")
	if err := f.openURL(authURL); err != nil {
		return "", fmt.Errorf("open browser: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		if res.err != nil {
			return "", res.err
		}
		return f.exchange(ctx, &cfg, res.code, verifier)
	}
}

func (f *LoopbackFlow) exchange(ctx context.Context, cfg *oauth2.Config, code, verifier string) (string, error) {
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("token response has no id_token")
	}
	if f.verifier != nil {
		if _, err := f.verifier.Verify(ctx, rawIDToken); err != nil {
			return "", fmt.Errorf("verify id token: %w", err)
		}
	}
	return rawIDToken, nil
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			// Not our flow; keep waiting for the real redirect.
			http.Error(w, "oauth callback state mismatch", http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("google sign-in failed: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("oauth callback carries no code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal.\n"))
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}
