package errors

import (
	"errors"
	"fmt"
)

// Common error types for the assistant client
var (
	// Authentication errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrRefreshFailed          = errors.New("token refresh failed")

	// Token errors, detected locally and never sent to the network
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// General errors
	ErrNotFound = errors.New("not found")
)

// RequestFailedError is a non-2xx response from a backend call that was not
// resolved by the authentication layer.
type RequestFailedError struct {
	Status int
	Body   string
}

func (e *RequestFailedError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request failed: HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("request failed: HTTP %d", e.Status)
}

// Unauthorized reports whether the backend rejected the caller's credentials.
func (e *RequestFailedError) Unauthorized() bool {
	return e.Status == 401
}

// IsAuthError reports whether err means the user has to log in again.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthenticationRequired) ||
		errors.Is(err, ErrRefreshFailed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalid) {
		return true
	}
	var rf *RequestFailedError
	return errors.As(err, &rf) && rf.Unauthorized()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
