package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
)

// AdminOnly must be mounted after AuthRequired.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if !actor.IsAdmin {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
