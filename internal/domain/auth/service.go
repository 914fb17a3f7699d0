package auth

import (
	"context"
)

type AuthService interface {
	// LoginWithGoogle issues an access token for a verified Google identity.
	LoginWithGoogle(ctx context.Context, login GoogleLogin) (TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	ListAdminEmails(ctx context.Context) ([]AdminEmail, error)
	AddAdminEmail(ctx context.Context, req AddAdminEmailRequest) (AdminEmail, error)
}
