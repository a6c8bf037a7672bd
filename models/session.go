package models

import "time"

// Session is the identity attached to a single request. It is parsed from
// the bearer token on every call and never stored process-wide.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	Token       string    `json:"token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsBaristaUser reports whether the session may mutate orders and the catalog.
func IsBaristaUser(s *Session) bool {
	return s != nil && s.UserID != "" && !s.IsAnonymous
}
