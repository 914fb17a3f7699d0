package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a valid, unrevoked access token and
// stores the caller as an auth.AuthContext. It expects jwtauth.Verify to run first.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if jwtService.IsTokenRevoked(rawToken(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			actor, err := auth.FromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

// rawToken mirrors the lookup order of the router's verifier.
func rawToken(r *http.Request) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	return jwtauth.TokenFromQuery(r)
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor auth.AuthContext) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the caller stored by AuthRequired.
func Actor(ctx context.Context) (auth.AuthContext, bool) {
	actor, ok := ctx.Value(actorKey{}).(auth.AuthContext)
	return actor, ok
}
