package models

import "time"

// Session states. A session moves Anonymous -> Authenticating -> one of the
// terminal states, and Logout returns it to Anonymous. There is no
// automatic retry, the caller re-authenticates explicitly.
const (
	SessionAnonymous      = "anonymous"
	SessionAuthenticating = "authenticating"
	SessionApproved       = "authenticated-approved"
	SessionPending        = "authenticated-pending"
	SessionDenied         = "denied"
)

// Session is the ephemeral per-login record of an authenticated identity.
// It lives in the token cache only and is never persisted server-side.
type Session struct {
	Address    string    `json:"address"`
	Role       string    `json:"role"`
	IsApproved bool      `json:"isApproved"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
}
