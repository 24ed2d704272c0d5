package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestIsAuthError(t *testing.T) {
	t.Run("wrapped sentinels", func(t *testing.T) {
		require.True(t, apperrors.IsAuthError(fmt.Errorf("get me: %w", apperrors.ErrAuthenticationRequired)))
		require.True(t, apperrors.IsAuthError(apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh")))
		require.True(t, apperrors.IsAuthError(apperrors.ErrTokenInvalid))
	})

	t.Run("401 request failure", func(t *testing.T) {
		err := fmt.Errorf("call: %w", &apperrors.RequestFailedError{Status: 401})
		require.True(t, apperrors.IsAuthError(err))
	})

	t.Run("business failure", func(t *testing.T) {
		err := &apperrors.RequestFailedError{Status: 500, Body: "boom"}
		require.False(t, apperrors.IsAuthError(err))
		require.Equal(t, "request failed: HTTP 500: boom", err.Error())
	})

	t.Run("nil wrap", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "nothing"))
	})
}
