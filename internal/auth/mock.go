package auth

import (
	"net/http"
	"time"
)

// MockAuth signs every visitor in as a development commissioner
type MockAuth struct {
	*sessionStore
	User User
}

// NewMockAuth creates a new mock authentication handler
func NewMockAuth() *MockAuth {
	return &MockAuth{
		sessionStore: newSessionStore(),
		User: User{
			ID:       "dev-manager",
			Email:    "dev@draft.local",
			Name:     "Dev Manager",
			Username: "devmanager",
			Groups:   []string{"managers", CommissionerGroup},
		},
	}
}

// LoginHandler auto-creates a session
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	u := m.User
	sess := &Session{ID: randomToken(), User: &u, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(24 * time.Hour)}
	m.put(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Expires:  sess.ExpiresAt,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CallbackHandler is not needed for mock auth
func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler for mock auth
func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Middleware for mock auth
func (m *MockAuth) Middleware(next http.Handler) http.Handler {
	return m.middleware(next)
}
