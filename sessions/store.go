package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/token/jwt"
)

// Keys owned by the session store.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store is the single owner of the persisted session. It is injected into
// the request layer rather than reached as global state. Writes are
// last-writer-wins.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Token returns the stored access token, or "" when there is none.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, TokenKey)
	if apperrors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// User returns the stored profile, or nil when there is none.
func (s *Store) User(ctx context.Context) (*UserProfile, error) {
	raw, err := s.kv.Get(ctx, UserKey)
	if apperrors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	var user UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("parse stored user: %w", err)
	}
	return &user, nil
}

// Get returns the current session, or nil when anonymous. A stored token
// without a decodable exp claim is invalid: the session is cleared and
// ErrTokenInvalid returned.
func (s *Store) Get(ctx context.Context) (*Session, error) {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return nil, err
	}

	exp, err := jwt.ParseExpiry(token)
	if err != nil {
		if clearErr := s.Clear(ctx); clearErr != nil {
			return nil, errors.Join(err, clearErr)
		}
		return nil, err
	}

	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: user, ExpiresAt: exp}, nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", apperrors.ErrTokenInvalid)
	}
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *Store) SetUser(ctx context.Context, user *UserProfile) error {
	if user == nil {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

// Set stores the token and, if present, the user of sess and fills in ExpiresAt.
func (s *Store) Set(ctx context.Context, sess *Session) error {
	exp, err := jwt.ParseExpiry(sess.AccessToken)
	if err != nil {
		return err
	}
	if err := s.SetToken(ctx, sess.AccessToken); err != nil {
		return err
	}
	if err := s.SetUser(ctx, sess.User); err != nil {
		return err
	}
	sess.ExpiresAt = exp
	return nil
}

// Clear removes every session key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
