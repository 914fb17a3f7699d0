package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	adminEmailRepo auth.AdminEmailRepository
	jwtService     jwt.Service
}

func NewAuthService(employeeRepo employee.EmployeeRepository, adminEmailRepo auth.AdminEmailRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		employeeRepo:   employeeRepo,
		adminEmailRepo: adminEmailRepo,
		jwtService:     jwtService,
	}
}

// LoginWithGoogle implements auth.AuthService.
// The caller is linked to the employee sharing its email, if any, and is an admin
// when its email is listed in admin_emails.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, login auth.GoogleLogin) (auth.TokenResponse, error) {
	if !login.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}
	email := strings.ToLower(strings.TrimSpace(login.Email))

	subject := auth.AuthContext{
		UserID: login.GoogleID,
		Email:  email,
	}

	emp, err := a.employeeRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		subject.EmployeeID = emp.ID
	case !errors.Is(err, employee.ErrEmployeeNotFound):
		return auth.TokenResponse{}, fmt.Errorf("failed to look up employee by email: %w", err)
	}

	subject.IsAdmin, err = a.adminEmailRepo.Exists(ctx, email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check admin email: %w", err)
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(subject)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		User:                 subject,
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return auth.ErrInvalidToken
	}
	a.jwtService.RevokeToken(accessToken)
	return nil
}

// ListAdminEmails implements auth.AuthService.
func (a *AuthServiceImpl) ListAdminEmails(ctx context.Context) ([]auth.AdminEmail, error) {
	emails, err := a.adminEmailRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin emails: %w", err)
	}
	return emails, nil
}

// AddAdminEmail implements auth.AuthService.
func (a *AuthServiceImpl) AddAdminEmail(ctx context.Context, req auth.AddAdminEmailRequest) (auth.AdminEmail, error) {
	if err := req.Validate(); err != nil {
		return auth.AdminEmail{}, err
	}
	added, err := a.adminEmailRepo.Add(ctx, req.Email)
	if err != nil {
		return auth.AdminEmail{}, fmt.Errorf("failed to add admin email: %w", err)
	}
	return added, nil
}
