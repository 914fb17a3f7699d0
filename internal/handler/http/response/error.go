package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired), errors.Is(err, kpi.ErrAdminRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, auth.ErrStateCookieNotFound), errors.Is(err, auth.ErrStateMismatch),
		errors.Is(err, auth.ErrMissingAuthCode):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered to another employee")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this employee")

	// KPI domain errors
	case errors.Is(err, kpi.ErrRecordNotFound):
		NotFound(w, "KPI record not found")
	case errors.Is(err, kpi.ErrForbiddenEmployee):
		Forbidden(w, "Not allowed to access another employee's KPI data")
	case errors.Is(err, kpi.ErrInvalidMetric):
		BadRequest(w, "Unknown KPI metric", nil)

	// CRM domain errors
	case errors.Is(err, crm.ErrContactNotFound):
		NotFound(w, "Contact not found")
	case errors.Is(err, crm.ErrFollowupNotFound):
		NotFound(w, "Followup not found")
	case errors.Is(err, crm.ErrAccountNotFound):
		NotFound(w, "Account not found")
	case errors.Is(err, crm.ErrForbidden):
		Forbidden(w, "Not allowed to access another employee's CRM data")
	case errors.Is(err, crm.ErrEmployeeRequired):
		BadRequest(w, "An employee is required to own this record", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
