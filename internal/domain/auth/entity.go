package auth

import (
	"fmt"
	"time"
)

// AuthContext is the authenticated caller, passed explicitly to every service
// operation that performs a permission check.
type AuthContext struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

// CanAccessEmployee reports whether the caller may read or write data owned by employeeID.
func (a AuthContext) CanAccessEmployee(employeeID string) bool {
	if a.IsAdmin {
		return true
	}
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}

// FromClaims builds an AuthContext from access token claims.
func FromClaims(claims map[string]interface{}) (AuthContext, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return AuthContext{}, fmt.Errorf("%w: user_id claim missing", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	employeeID, _ := claims["employee_id"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return AuthContext{
		UserID:     userID,
		Email:      email,
		EmployeeID: employeeID,
		IsAdmin:    isAdmin,
	}, nil
}

// AdminEmail grants admin rights to whoever signs in with Email.
type AdminEmail struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
