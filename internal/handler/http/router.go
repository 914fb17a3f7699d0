package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth     AuthHandler
	Employee EmployeeHandler
	KPI      KPIHandler
	CRM      CRMHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

// NewLogger returns a JSON logger whose attributes follow the ECS schema.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kpi-pulse"),
		slog.String("env", env),
	)
}

func NewRouter(jwtService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(jwtService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(jwtService))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.List)
				r.Get("/{id}", h.Employee.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Employee.Create)
					r.Patch("/{id}", h.Employee.Update)
				})
			})

			r.Route("/admin-emails", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.Auth.ListAdminEmails)
				r.Post("/", h.Auth.AddAdminEmail)
			})

			r.Route("/kpi", func(r chi.Router) {
				r.Get("/records", h.KPI.ListRecords)
				r.Get("/targets", h.KPI.Targets)
				r.Get("/dashboard", h.KPI.Dashboard)
				r.Get("/monthly", h.KPI.MonthlyBucket)
				r.Get("/team-trend", h.KPI.TeamTrend)
				r.Get("/weeks", h.KPI.WeekOptions)
				r.Get("/stream", h.KPI.Stream)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/records", h.KPI.UpsertRecord)
					r.Get("/ranking", h.KPI.Ranking)
				})
			})

			r.Route("/crm", func(r chi.Router) {
				r.Get("/contacts", h.CRM.ListContacts)
				r.Post("/contacts", h.CRM.CreateContact)
				r.Patch("/contacts/{id}", h.CRM.UpdateContact)

				r.Get("/followups", h.CRM.ListFollowups)
				r.Post("/followups", h.CRM.CreateFollowup)
				r.Patch("/followups/{id}", h.CRM.UpdateFollowup)

				r.Get("/meetings", h.CRM.ListMeetings)
				r.Post("/meetings", h.CRM.CreateMeeting)

				r.Get("/accounts", h.CRM.ListAccounts)
				r.Post("/accounts", h.CRM.CreateAccount)
				r.Patch("/accounts/{id}", h.CRM.UpdateAccount)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
