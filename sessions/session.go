package sessions

import (
	"time"
)

// UserProfile is the backend's view of the signed-in student. Field names
// follow the backend's JSON contract.
type UserProfile struct {
	FullName    string `json:"fullName"`              // Display name
	Email       string `json:"email"`                 // Google account email, unique per user
	PictureURL  string `json:"pictureUrl,omitempty"`  // Avatar URL from Google
	GroupNumber *int   `json:"groupNumber,omitempty"` // Study group, 6 digits, nil when not chosen
}

// Session is the client-held proof of authentication.
type Session struct {
	AccessToken string       // JWT issued by the backend
	User        *UserProfile // May be nil if the backend never returned a profile
	ExpiresAt   time.Time    // Derived from the token's exp claim
}

// ExpiresWithin reports whether the session expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Before(s.ExpiresAt.Add(-d))
}
