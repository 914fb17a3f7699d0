package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/oauth"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler interface {
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ListAdminEmails(w http.ResponseWriter, r *http.Request)
	AddAdminEmail(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
}

func NewAuthHandler(authService auth.AuthService, googleService oauth.GoogleService, frontendURL string) AuthHandler {
	return &AuthHandlerImpl{
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
	}
}

// LoginWithGoogle handles GET /auth/login/oauth/google
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state, cookie, err := a.googleService.NewState()
	if err != nil {
		slog.Error("Failed to create oauth state", "error", err)
		response.HandleError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, a.googleService.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle handles GET /auth/oauth/callback/google and hands the
// access token to the frontend through a redirect.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Error("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	if err := a.googleService.CheckState(r); err != nil {
		slog.Error("OAuth state check failed", "error", err)
		redirectWithError("state_mismatch")
		return
	}

	login, err := a.googleService.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		slog.Error("Failed to exchange oauth code", "error", err)
		redirectWithError("token_verification_failed")
		return
	}

	tokenResponse, err := a.authService.LoginWithGoogle(r.Context(), login)
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		redirectWithError("login_failed")
		return
	}

	slog.Info("User logged in via Google OAuth", "email", tokenResponse.User.Email, "is_admin", tokenResponse.User.IsAdmin)
	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_at=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.AccessTokenExpiresIn,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// Me handles GET /auth/me
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	response.Success(w, actor)
}

// Logout handles POST /auth/logout
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.authService.Logout(r.Context(), jwtauth.TokenFromHeader(r)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// ListAdminEmails handles GET /admin-emails
func (a *AuthHandlerImpl) ListAdminEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := a.authService.ListAdminEmails(r.Context())
	if err != nil {
		slog.Error("ListAdminEmails service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, emails)
}

// AddAdminEmail handles POST /admin-emails
func (a *AuthHandlerImpl) AddAdminEmail(w http.ResponseWriter, r *http.Request) {
	var req auth.AddAdminEmailRequest
	if !decodeJSON(w, r, "AddAdminEmail", &req) {
		return
	}
	if err := req.Validate(); err != nil {
		slog.Error("AddAdminEmail validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	added, err := a.authService.AddAdminEmail(r.Context(), req)
	if err != nil {
		slog.Error("AddAdminEmail service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Admin email added", added)
}
