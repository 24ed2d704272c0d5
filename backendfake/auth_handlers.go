package backendfake

import (
	"net/http"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/token/jwt"
)

// GoogleLoginHandler exchanges a verified Google ID token for an access token.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.GoogleAuthRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		identity, err := s.identity.VerifyIdentity(r.Context(), in.Token)
		if err != nil {
			s.log.Info().Err(err).Msg("Google ID token rejected")
			writeError(w, http.StatusUnauthorized, "invalid google id token")
			return
		}

		user := s.data.upsertUser(identity.Email, identity.Name, identity.Picture)
		token, err := s.tokens.CreateAccessToken(jwt.Subject{Email: user.Email, Name: user.FullName})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		s.log.Info().Str("email", user.Email).Msg("User logged in")
		writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: user})
	}
}

// RefreshHandler swaps a token, expired by no more than the grace period, for
// a new one. The old token is revoked once the refresh overlap has passed.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)

		if status := int(s.refreshStatus.Load()); status != 0 {
			writeError(w, status, "refresh disabled")
			return
		}

		raw, ok := bearerToken(w, r)
		if !ok {
			return
		}
		claims, err := s.tokens.Verify(raw, s.grace)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if s.revoked.IsRevoked(claims.ID) {
			writeError(w, http.StatusUnauthorized, "token revoked")
			return
		}

		user, found := s.data.user(claims.Subject)
		if !found {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		token, err := s.tokens.CreateAccessToken(jwt.Subject{Email: user.Email, Name: user.FullName})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.revoke(claims, s.overlap)

		writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: user})
	}
}

// LogoutHandler revokes the presented token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(w, r)
		if !ok {
			return
		}
		claims, err := s.tokens.Verify(raw, s.grace)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		s.revoke(claims, 0)
		s.log.Info().Str("email", claims.Subject).Msg("User logged out")
		w.WriteHeader(http.StatusNoContent)
	}
}

// revoke ends the token after delay.
func (s *Server) revoke(claims *jwt.Claims, delay time.Duration) {
	s.revoked.Cleanup()
	s.revoked.Add(claims.ID, time.Now().Add(delay), claims.ExpiresAt.Add(s.grace+time.Minute))
}
