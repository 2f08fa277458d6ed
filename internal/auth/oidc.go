package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// OIDCConfig holds the OAuth2/OIDC client settings. Endpoint URLs default
// to the Authentik layout under BaseURL.
type OIDCConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	LogoutURL    string
}

func (c *OIDCConfig) defaults() {
	base := strings.TrimRight(c.BaseURL, "/")
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "profile", "email"}
	}
	if c.AuthURL == "" {
		c.AuthURL = base + "/application/o/authorize/"
	}
	if c.TokenURL == "" {
		c.TokenURL = base + "/application/o/token/"
	}
	if c.UserInfoURL == "" {
		c.UserInfoURL = base + "/application/o/userinfo/"
	}
	if c.LogoutURL == "" {
		c.LogoutURL = base + "/application/o/fantasy-draft/end-session/"
	}
}

// OIDCAuth manages authentication with an OIDC provider
type OIDCAuth struct {
	config       OIDCConfig
	oauth2Config *oauth2.Config
	httpClient   *http.Client
	*sessionStore
}

// NewOIDCAuth creates a new OIDC authentication handler
func NewOIDCAuth(config OIDCConfig) *OIDCAuth {
	config.defaults()
	return &OIDCAuth{
		config: config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.AuthURL,
				TokenURL: config.TokenURL,
			},
		},
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		sessionStore: newSessionStore(),
	}
}

// LoginHandler initiates the OAuth2 login flow
func (a *OIDCAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := randomToken()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler handles the OAuth2 callback
func (a *OIDCAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, a.httpClient)
	token, err := a.oauth2Config.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "Failed to exchange token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	user, err := a.userInfo(ctx, token)
	if err != nil {
		http.Error(w, "Failed to get user info: "+err.Error(), http.StatusInternalServerError)
		return
	}

	expires := token.Expiry
	if expires.IsZero() {
		expires = time.Now().Add(8 * time.Hour)
	}
	sess := &Session{ID: randomToken(), User: user, Token: token, CreatedAt: time.Now(), ExpiresAt: expires}
	a.put(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler ends the local session and the provider session
func (a *OIDCAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	a.logout(w, r)
	http.Redirect(w, r, a.config.LogoutURL, http.StatusSeeOther)
}

// Middleware protects routes requiring authentication
func (a *OIDCAuth) Middleware(next http.Handler) http.Handler {
	return a.middleware(next)
}

func (a *OIDCAuth) userInfo(ctx context.Context, token *oauth2.Token) (*User, error) {
	client := a.oauth2Config.Client(ctx, token)
	resp, err := client.Get(a.config.UserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get user info: %s - %s", resp.Status, string(body))
	}

	var info struct {
		Sub               string   `json:"sub"`
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Groups            []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &User{
		ID:       info.Sub,
		Email:    info.Email,
		Name:     info.Name,
		Username: info.PreferredUsername,
		Groups:   info.Groups,
	}, nil
}
