package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/config"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	appHTTP "github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/kpi-pulse-backend-go/internal/service/auth"
	crmService "github.com/cmlabs-hris/kpi-pulse-backend-go/internal/service/crm"
	employeeService "github.com/cmlabs-hris/kpi-pulse-backend-go/internal/service/employee"
	kpiService "github.com/cmlabs-hris/kpi-pulse-backend-go/internal/service/kpi"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.App.RunMigrations {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	bucketCache := cache.NewNoopCache()
	if cfg.Redis.Addr != "" {
		bucketCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "kpi-pulse:")
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("Monthly bucket cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.BucketTTL)
	}
	defer bucketCache.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	adminEmailRepo := postgresql.NewAdminEmailRepository(db)
	recordRepo := postgresql.NewKPIRecordRepository(db)

	targets := kpi.DefaultTargetConfig()
	targets.TeamTargetOffset = cfg.KPI.TeamTargetOffset
	if err := targets.Validate(); err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	googleService := oauth.NewGoogleService(
		cfg.OAuth2Google.ClientID,
		cfg.OAuth2Google.ClientSecret,
		cfg.OAuth2Google.RedirectURL,
		cfg.App.IsProduction(),
	)
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}

	authService := serviceAuth.NewAuthService(employeeRepo, adminEmailRepo, jwtService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	kpiSvc := kpiService.NewKPIService(recordRepo, employeeRepo, bucketCache, kpiService.Options{
		Targets:         targets,
		Strategy:        kpiService.Strategy(cfg.KPI.Aggregation),
		CacheTTL:        cfg.Redis.BucketTTL,
		FilterThreshold: cfg.KPI.FilterThreshold,
		Hub:             sse.NewHub(),
	})
	crmSvc := crmService.NewCRMService(crmService.Repositories{
		Contacts:  postgresql.NewContactRepository(db),
		Followups: postgresql.NewFollowupRepository(db),
		Meetings:  postgresql.NewMeetingRepository(db),
		Accounts:  postgresql.NewAccountRepository(db),
		Employees: employeeRepo,
		Transact: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}, emailService, cfg.Cron.FollowupLead, cfg.App.FrontendURL)

	scheduler := startScheduler(ctx, cfg.Cron, crmSvc)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtService, appHTTP.Handlers{
		Auth:     appHTTP.NewAuthHandler(authService, googleService, cfg.App.FrontendURL),
		Employee: appHTTP.NewEmployeeHandler(employeeSvc),
		KPI:      appHTTP.NewKPIHandler(kpiSvc),
		CRM:      appHTTP.NewCRMHandler(crmSvc),
	}, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "aggregation", cfg.KPI.Aggregation, "target_version", targets.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func startScheduler(ctx context.Context, cfg config.CronConfig, crmSvc crm.CRMService) *cron.Scheduler {
	scheduler := cron.NewScheduler()
	cron.RegisterFollowupReminders(scheduler, crmSvc, cfg.FollowupInterval)
	scheduler.Start(ctx)
	return scheduler
}
