package jwt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

// DefaultExpiryBuffer is the safety margin before exp at which a token is
// already treated as expiring.
const DefaultExpiryBuffer = 5 * time.Minute

// ParseExpiry decodes the payload segment of a JWT and returns its exp claim.
// The signature is not verified; only the backend can do that.
func ParseExpiry(rawToken string) (time.Time, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: expected 3 segments, got %d", apperrors.ErrTokenInvalid, len(parts))
	}

	payload, err := jwtlib.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: decode payload: %v", apperrors.ErrTokenInvalid, err)
	}

	claims := jwtlib.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: payload is not JSON: %v", apperrors.ErrTokenInvalid, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", apperrors.ErrTokenInvalid)
	}
	return exp.Time, nil
}

// IsExpiredOrExpiring returns true if now >= exp - buffer, or if the token
// cannot be decoded. A malformed token is never treated as valid.
func IsExpiredOrExpiring(rawToken string, now time.Time, buffer time.Duration) bool {
	exp, err := ParseExpiry(rawToken)
	if err != nil {
		return true
	}
	return !now.Before(exp.Add(-buffer))
}
