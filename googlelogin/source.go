// Package googlelogin obtains the Google ID token the backend exchanges for
// a session.
package googlelogin

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

// IDTokenSource yields a Google ID token for the user.
type IDTokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// StaticSource returns a token obtained elsewhere, e.g. pasted by the user.
type StaticSource string

func (s StaticSource) IDToken(context.Context) (string, error) {
	token := strings.TrimSpace(string(s))
	if token == "" {
		return "", fmt.Errorf("%w: id token is empty", apperrors.ErrInvalidInput)
	}
	return token, nil
}
