package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Redis        RedisConfig
	SMTP         SMTPConfig
	KPI          KPIConfig
	Cron         CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
	RunMigrations  bool
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// RedisConfig configures the monthly bucket cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	BucketTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type KPIConfig struct {
	TeamTargetOffset int
	// Aggregation is "local" or "server".
	Aggregation     string
	FilterThreshold float64
}

type CronConfig struct {
	FollowupInterval time.Duration
	FollowupLead     time.Duration
}

// Load reads the configuration from the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}
	var err error

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "kpi_pulse"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	if config.Database.Port, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if config.Database.MaxConns, err = getEnvInt("DB_MAX_CONNS", 25); err != nil {
		return nil, err
	}
	if config.Database.MinConns, err = getEnvInt("DB_MIN_CONNS", 2); err != nil {
		return nil, err
	}

	// Application configuration
	config.App = AppConfig{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if config.App.Port, err = getEnvInt("APP_PORT", 8080); err != nil {
		return nil, err
	}
	if config.App.RunMigrations, err = getEnvBool("RUN_MIGRATIONS", false); err != nil {
		return nil, err
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{Secret: getEnv("JWT_SECRET_KEY", "")}
	if config.JWT.AccessExpiration, err = getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour); err != nil {
		return nil, err
	}

	// OAuth2 Google configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
	}

	// Redis configuration
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	if config.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.Redis.BucketTTL, err = getEnvDuration("REDIS_BUCKET_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	// SMTP configuration
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@kpi-pulse.local"),
		FromName: getEnv("SMTP_FROM_NAME", "KPI Pulse"),
	}
	if config.SMTP.Port, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	// KPI configuration
	config.KPI = KPIConfig{Aggregation: getEnv("KPI_AGGREGATION", "local")}
	if config.KPI.TeamTargetOffset, err = getEnvInt("KPI_TEAM_TARGET_OFFSET", 0); err != nil {
		return nil, err
	}
	if config.KPI.FilterThreshold, err = getEnvFloat("KPI_FILTER_THRESHOLD", 50); err != nil {
		return nil, err
	}

	// Cron configuration
	if config.Cron.FollowupInterval, err = getEnvDuration("CRON_FOLLOWUP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if config.Cron.FollowupLead, err = getEnvDuration("CRON_FOLLOWUP_LEAD", 24*time.Hour); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate returns the first configuration problem found.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		return errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return errors.New("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.App.IsProduction() {
		if c.OAuth2Google.ClientID == "" {
			return errors.New("CLIENT_ID is required")
		}
		if c.OAuth2Google.ClientSecret == "" {
			return errors.New("CLIENT_SECRET is required")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return errors.New("REDIRECT_URL is required")
		}
	}
	if c.KPI.Aggregation != "local" && c.KPI.Aggregation != "server" {
		return fmt.Errorf("KPI_AGGREGATION must be local or server, got %q", c.KPI.Aggregation)
	}
	if c.KPI.TeamTargetOffset < 0 {
		return errors.New("KPI_TEAM_TARGET_OFFSET must not be negative")
	}
	if c.KPI.FilterThreshold < 0 || c.KPI.FilterThreshold > 100 {
		return errors.New("KPI_FILTER_THRESHOLD must be between 0 and 100")
	}
	if c.Cron.FollowupInterval <= 0 {
		return errors.New("CRON_FOLLOWUP_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
