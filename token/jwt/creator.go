package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Subject is the identity an access token is issued for.
type Subject struct {
	Email string
	Name  string
}

// Claims are the fields the issuer embeds in, and the verifier extracts from, an access token.
type Claims struct {
	Subject   string
	Name      string
	ID        string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Creator issues and verifies the backend's access tokens
type Creator struct {
	issuer string
	expiry time.Duration
	signer Signer
}

// NewCreator creates a new JWT creator
func NewCreator(issuer string, expiry time.Duration, signer Signer) *Creator {
	return &Creator{
		issuer: issuer,
		expiry: expiry,
		signer: signer,
	}
}

// CreateAccessToken creates a signed access token for the subject
func (c *Creator) CreateAccessToken(sub Subject) (string, error) {
	return c.CreateAccessTokenExpiring(sub, NowTimeFunc().Add(c.expiry))
}

// CreateAccessTokenExpiring creates a token with an explicit expiry, used to
// hand out already-expiring tokens in tests.
func (c *Creator) CreateAccessTokenExpiring(sub Subject, exp time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"iss":  c.issuer,
		"sub":  sub.Email,
		"name": sub.Name,
		"iat":  NowTimeFunc().Unix(),
		"exp":  exp.Unix(),
		"jti":  uuid.New().String(),
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}

// Verify checks the signature and issuer of rawToken. A token whose exp lies
// in the past is accepted while it is no more than grace past expiry; pass 0
// to require an unexpired token.
func (c *Creator) Verify(rawToken string, grace time.Duration) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, c.signer.GetVerificationKey,
		jwtlib.WithoutClaimsValidation(),
		jwtlib.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}

	if iss, _ := claims.GetIssuer(); iss != c.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", apperrors.ErrTokenInvalid, iss)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp claim", apperrors.ErrTokenInvalid)
	}
	if NowTimeFunc().After(exp.Time.Add(grace)) {
		return nil, apperrors.ErrTokenExpired
	}

	sub, _ := claims.GetSubject()
	name, _ := claims["name"].(string)
	jti, _ := claims["jti"].(string)

	var iat time.Time
	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
		iat = issued.Time
	}

	return &Claims{
		Subject:   sub,
		Name:      name,
		ID:        jti,
		IssuedAt:  iat,
		ExpiresAt: exp.Time,
	}, nil
}
