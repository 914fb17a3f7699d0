package auth

import (
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
)

type TokenResponse struct {
	AccessToken          string      `json:"access_token"`
	AccessTokenExpiresIn int64       `json:"access_token_expires_in"`
	User                 AuthContext `json:"user"`
}

// GoogleLogin is the identity returned by Google after the OAuth exchange.
type GoogleLogin struct {
	GoogleID      string
	Email         string
	VerifiedEmail bool
}

type AddAdminEmailRequest struct {
	Email string `json:"email"`
}

func (r *AddAdminEmailRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
