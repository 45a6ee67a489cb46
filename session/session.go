// Package session holds the client-side authentication lease: the token
// pair persisted in the shared key-value store and the expiry tracker
// that projects its remaining lifetime.
package session

import "time"

// Session is the authentication lease as held by the client. The access
// token is opaque to this subsystem except for its embedded expiry claim.
type Session struct {
	AccessToken  string
	RefreshToken string // empty when the backend issued none
	ExpiresAt    time.Time
}

// HasRefreshToken reports whether the lease can be extended without
// re-entering credentials.
func (s Session) HasRefreshToken() bool {
	return s.RefreshToken != ""
}
