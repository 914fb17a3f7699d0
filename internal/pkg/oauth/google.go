package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	StateCookieName = "oauth_state"
	userInfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleScopes are the scopes needed to read the signed-in address.
var GoogleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
}

type GoogleService interface {
	// NewState returns a random anti-forgery state and the cookie that carries it.
	NewState() (state string, cookie *http.Cookie, err error)
	// CheckState compares the state echoed by Google against the state cookie.
	CheckState(r *http.Request) error
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the Google identity behind it.
	Exchange(ctx context.Context, code string) (auth.GoogleLogin, error)
}

type GoogleServiceImpl struct {
	config      *oauth2.Config
	userInfoURL string
	secure      bool
}

func NewGoogleService(clientID, clientSecret, redirectURL string, secureCookies bool) *GoogleServiceImpl {
	return &GoogleServiceImpl{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: userInfoURL,
		secure:      secureCookies,
	}
}

type googleUserInfo struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

func (g *GoogleServiceImpl) NewState() (string, *http.Cookie, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", nil, fmt.Errorf("failed to generate oauth state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	return state, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/api/v1/auth",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (g *GoogleServiceImpl) CheckState(r *http.Request) error {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil {
		return auth.ErrStateCookieNotFound
	}
	if cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		return auth.ErrStateMismatch
	}
	return nil
}

func (g *GoogleServiceImpl) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleServiceImpl) Exchange(ctx context.Context, code string) (auth.GoogleLogin, error) {
	if strings.TrimSpace(code) == "" {
		return auth.GoogleLogin{}, auth.ErrMissingAuthCode
	}
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return auth.GoogleLogin{}, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return auth.GoogleLogin{}, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return auth.GoogleLogin{}, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.GoogleLogin{}, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return auth.GoogleLogin{}, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return auth.GoogleLogin{
		GoogleID:      info.GoogleID,
		Email:         strings.ToLower(info.Email),
		VerifiedEmail: info.VerifiedEmail,
	}, nil
}
