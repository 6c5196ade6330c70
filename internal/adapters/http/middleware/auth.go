package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"planning/internal/domain/role"
	"planning/internal/localstore"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Session is the client-local current-user record: who signed in, under
// which role, plus the normalized role stamped at sign-in.
type Session struct {
	Trigram        string    `json:"trigram"`
	Role           string    `json:"role"`
	NormalizedRole string    `json:"normalizedRole"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SessionStore holds session records keyed by token. Records are persisted
// as a single JSON blob in the durable local store so sessions survive
// restarts; persistence failures degrade to in-memory-only sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	local    *localstore.Store
}

// NewSessionStore creates a session store, loading any persisted records.
// PRE: local may be nil (tests); then sessions are in-memory only
// POST: Returns a ready-to-use store
func NewSessionStore(local *localstore.Store) *SessionStore {
	ss := &SessionStore{
		sessions: make(map[string]Session),
		local:    local,
	}
	if local != nil {
		local.Get(localstore.KeyCurrentUsers, &ss.sessions)
		if ss.sessions == nil {
			ss.sessions = make(map[string]Session)
		}
	}
	return ss
}

// Create stores a new session record and returns the token. The normalized
// role is derived here so every later check sees a canonical value.
// PRE: trigram and userRole are non-empty
// POST: Session is stored and persisted, token is returned
func (ss *SessionStore) Create(trigram, userRole string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		Trigram:        trigram,
		Role:           userRole,
		NormalizedRole: role.Normalize(userRole),
		CreatedAt:      time.Now(),
	}
	ss.persistLocked()
	return token, nil
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: Returns the session if valid and not expired
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	// Sessions expire after 24 hours
	if time.Since(session.CreatedAt) > 24*time.Hour {
		delete(ss.sessions, token)
		ss.persistLocked()
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
// PRE: token is non-empty
// POST: Session with given token is removed and the change persisted
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
	ss.persistLocked()
}

// persistLocked writes the session set to the durable store. Caller holds mu.
func (ss *SessionStore) persistLocked() {
	if ss.local == nil {
		return
	}
	ss.local.Put(localstore.KeyCurrentUsers, ss.sessions)
}

const sessionCookieName = "planning_session"

// Auth returns middleware that extracts the session from the cookie and sets
// it in the request context. It does NOT block unauthenticated requests;
// use RequireSession or RequireRole for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns middleware that redirects unauthenticated requests
// to the landing page.
func RequireSession(redirectTo string) func(http.Handler) http.Handler {
	return RequireRole("", redirectTo)
}

// RequireRole returns middleware that redirects requests whose session is
// absent or whose normalized role differs from the expected one. An empty
// expected role only requires a signed-in session. Expected and actual roles
// are both normalized, so any alias of the expected role is accepted.
func RequireRole(expectedRole, redirectTo string) func(http.Handler) http.Handler {
	if redirectTo == "" {
		redirectTo = "/"
	}
	expected := role.Normalize(expectedRole)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CheckRole(r.Context(), expected) {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckRole reports whether the context carries a session whose normalized
// role matches the expected normalized role (any session when expected is
// empty). Exposed for defensive in-handler checks.
func CheckRole(ctx context.Context, expectedRole string) bool {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return false
	}
	expected := role.Normalize(expectedRole)
	if expected == "" {
		return true
	}
	current := session.NormalizedRole
	if current == "" {
		current = role.Normalize(session.Role)
	}
	return current == expected
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   false, // Allow HTTP for local development
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   86400, // 24 hours
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionToken returns the raw session token from the request cookie.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
