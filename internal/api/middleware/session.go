package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// MinSessionSecretLength is the minimum cookie secret size accepted at startup.
const MinSessionSecretLength = 32

const sessionName = "vented_session"

type contextKey string

const userIDKey contextKey = "userID"

// SessionMiddleware mints an anonymous identity for every visitor. The id
// is a uuid stored in a signed cookie; no accounts, no login.
type SessionMiddleware struct {
	store *sessions.CookieStore
}

// NewSessionMiddleware creates the middleware backed by a signed cookie store.
func NewSessionMiddleware(secret string) (*SessionMiddleware, error) {
	if len(secret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionMiddleware{store: store}, nil
}

// WithIdentity resolves the visitor's anonymous id, minting and setting the
// cookie on first visit, and injects the id into the request context.
func (m *SessionMiddleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, sessionName)
		if err != nil {
			// A tampered or stale cookie just gets replaced.
			sess, _ = m.store.New(r, sessionName)
		}

		userID, _ := sess.Values["userId"].(string)
		if userID == "" {
			userID = uuid.NewString()
			sess.Values["userId"] = userID
			if err := sess.Save(r, w); err != nil {
				http.Error(w, "Failed to establish session", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the anonymous user id injected by WithIdentity, or ""
// when the middleware did not run.
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// WithUserID returns a context carrying id as the anonymous identity, the
// same way WithIdentity injects it.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
