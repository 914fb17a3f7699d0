package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
)

// actorFrom returns the authenticated caller or writes a 401 and reports false.
func actorFrom(w http.ResponseWriter, r *http.Request) (auth.AuthContext, bool) {
	actor, ok := middleware.Actor(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
	}
	return actor, ok
}

// decodeJSON decodes the request body into dst or writes a 400 and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// queryParams parses typed query string values, collecting a validation error per bad field.
type queryParams struct {
	values url.Values
	errs   validator.ValidationErrors
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (q *queryParams) String(key string) string {
	return q.values.Get(key)
}

func (q *queryParams) Int(key string) int {
	raw := q.values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs = append(q.errs, validator.ValidationError{Field: key, Message: key + " must be an integer"})
		return 0
	}
	return n
}

func (q *queryParams) Float(key string) *float64 {
	raw := q.values.Get(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.errs = append(q.errs, validator.ValidationError{Field: key, Message: key + " must be a number"})
		return nil
	}
	return &f
}

func (q *queryParams) Bool(key string) *bool {
	raw := q.values.Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs = append(q.errs, validator.ValidationError{Field: key, Message: key + " must be true or false"})
		return nil
	}
	return &b
}

// Err returns the collected parse errors, or nil.
func (q *queryParams) Err() error {
	if len(q.errs) > 0 {
		return q.errs
	}
	return nil
}

func list[T any](w http.ResponseWriter, items []T) {
	response.SuccessWithMeta(w, items, &response.Meta{Count: len(items)})
}
