// Package sessions carries the anonymous identity a caller acts under.
// The id is minted once (and kept stable across restarts by whoever owns
// it: the preference store for the local process, the cookie middleware for
// HTTP callers) and passed explicitly into every service call. Services
// never reach into ambient global state for it.
package sessions

import "github.com/google/uuid"

// Session binds an operation to an anonymous author id.
type Session struct {
	UserID string
}

// New mints a session with a fresh anonymous id.
func New() Session {
	return Session{UserID: uuid.NewString()}
}

// For wraps an existing stable id in a session.
func For(userID string) Session {
	return Session{UserID: userID}
}

// Anonymous reports whether the session has no usable identity.
func (s Session) Anonymous() bool {
	return s.UserID == ""
}
