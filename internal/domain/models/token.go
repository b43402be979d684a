package models

import "time"

// AuthUser is the transient identity derived from verifying a session token.
// It is never persisted independently of the token itself.
type AuthUser struct {
	Subject         string
	IsAuthenticated bool
	TokenExpiry     time.Time
	SessionID       string
}

// ExpiresSoon reports whether the token runs out within the given window,
// used to surface a non-blocking re-login warning.
func (u AuthUser) ExpiresSoon(window time.Duration) bool {
	return time.Until(u.TokenExpiry) < window
}
