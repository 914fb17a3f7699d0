package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-for-jwt"
	andiID     = "0192d3a4-0000-7000-8000-000000000001"
)

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	byEmail map[string]employee.Employee
	err     error
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	if f.err != nil {
		return employee.Employee{}, f.err
	}
	e, ok := f.byEmail[email]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type fakeAdminEmailRepo struct {
	emails []auth.AdminEmail
}

func (f *fakeAdminEmailRepo) List(ctx context.Context) ([]auth.AdminEmail, error) {
	return f.emails, nil
}

func (f *fakeAdminEmailRepo) Add(ctx context.Context, email string) (auth.AdminEmail, error) {
	for _, e := range f.emails {
		if e.Email == email {
			return e, nil
		}
	}
	added := auth.AdminEmail{Email: email, CreatedAt: time.Now()}
	f.emails = append(f.emails, added)
	return added, nil
}

func (f *fakeAdminEmailRepo) Exists(ctx context.Context, email string) (bool, error) {
	for _, e := range f.emails {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newTestAuthService() (auth.AuthService, *jwt.JWTService, *fakeAdminEmailRepo, *fakeEmployeeRepo) {
	employees := &fakeEmployeeRepo{byEmail: map[string]employee.Employee{
		"andi@example.com": {ID: andiID, Name: "Andi", Email: "andi@example.com"},
	}}
	admins := &fakeAdminEmailRepo{emails: []auth.AdminEmail{{Email: "boss@example.com"}}}
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(employees, admins, jwtService), jwtService, admins, employees
}

// ===== LOGIN WITH GOOGLE =====

func TestAuthService_LoginWithGoogle_Employee(t *testing.T) {
	// Arrange
	svc, jwtService, _, _ := newTestAuthService()

	// Act
	resp, err := svc.LoginWithGoogle(context.Background(), auth.GoogleLogin{
		GoogleID:      "g-andi",
		Email:         "Andi@Example.com",
		VerifiedEmail: true,
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, auth.AuthContext{UserID: "g-andi", Email: "andi@example.com", EmployeeID: andiID}, resp.User)

	caller, err := jwtService.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User, caller)
}

func TestAuthService_LoginWithGoogle_AdminWithoutEmployee(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	resp, err := svc.LoginWithGoogle(context.Background(), auth.GoogleLogin{
		GoogleID:      "g-boss",
		Email:         "boss@example.com",
		VerifiedEmail: true,
	})

	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)
	assert.Empty(t, resp.User.EmployeeID)
}

func TestAuthService_LoginWithGoogle_UnverifiedEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.LoginWithGoogle(context.Background(), auth.GoogleLogin{Email: "andi@example.com"})

	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
}

func TestAuthService_LoginWithGoogle_RepositoryFailure(t *testing.T) {
	svc, _, _, employees := newTestAuthService()
	employees.err = errors.New("connection refused")

	_, err := svc.LoginWithGoogle(context.Background(), auth.GoogleLogin{Email: "andi@example.com", VerifiedEmail: true})

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
}

// ===== LOGOUT =====

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, jwtService, _, _ := newTestAuthService()
	resp, err := svc.LoginWithGoogle(context.Background(), auth.GoogleLogin{Email: "andi@example.com", VerifiedEmail: true, GoogleID: "g"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.AccessToken))

	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))
	_, err = jwtService.ParseAccessToken(resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	assert.ErrorIs(t, svc.Logout(context.Background(), ""), auth.ErrInvalidToken)
}

// ===== ADMIN EMAILS =====

func TestAuthService_AddAdminEmail(t *testing.T) {
	svc, _, admins, _ := newTestAuthService()

	added, err := svc.AddAdminEmail(context.Background(), auth.AddAdminEmailRequest{Email: "  Lead@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "lead@example.com", added.Email)

	_, err = svc.AddAdminEmail(context.Background(), auth.AddAdminEmailRequest{Email: "lead@example.com"})
	require.NoError(t, err)
	assert.Len(t, admins.emails, 2)

	list, err := svc.ListAdminEmails(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAuthService_AddAdminEmail_Invalid(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.AddAdminEmail(context.Background(), auth.AddAdminEmailRequest{Email: "not-an-email"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "email", verrs[0].Field)
}
