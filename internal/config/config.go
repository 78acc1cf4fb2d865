package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Redis        RedisConfig
	Payroll      PayrollConfig
	Tax          TaxConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrateOnStart bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
	// DefaultPassword is given to login accounts provisioned for new employees.
	DefaultPassword string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google login is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// RedisConfig holds the optional cache connection. An empty Host disables it.
type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PayrollConfig holds the pay policy used by the payroll engine.
type PayrollConfig struct {
	WorkingDays        int
	HoursPerDay        int
	OvertimeMultiplier decimal.Decimal
	// Cron is a standard 5-field cron expression; empty disables the scheduled run.
	Cron string
}

type TaxConfig struct {
	Oracle   string // "slab" or "command"
	Command  []string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	migrate, err := strconv.ParseBool(getEnv("MIGRATE_ON_START", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIGRATE_ON_START: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           dbPort,
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		Name:           getEnv("DB_NAME", "payroll"),
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
		MigrateOnStart: migrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "Payroll"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),

		DefaultPassword: getEnv("EMPLOYEE_DEFAULT_PASSWORD", "emp123"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "payroll@example.com"),
		FromName: getEnv("SMTP_FROM_NAME", "Payroll"),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// Redis configuration
	redisPort, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     redisPort,
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Payroll policy
	workingDays, err := strconv.Atoi(getEnv("PAYROLL_WORKING_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKING_DAYS: %w", err)
	}
	hoursPerDay, err := strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	multiplier, err := decimal.NewFromString(getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.5"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %w", err)
	}
	config.Payroll = PayrollConfig{
		WorkingDays:        workingDays,
		HoursPerDay:        hoursPerDay,
		OvertimeMultiplier: multiplier,
		Cron:               getEnv("PAYROLL_CRON", ""),
	}

	// Tax oracle
	taxTimeout, err := time.ParseDuration(getEnv("TAX_ORACLE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_ORACLE_TIMEOUT: %w", err)
	}
	taxCacheTTL, err := time.ParseDuration(getEnv("TAX_CACHE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_CACHE_TTL: %w", err)
	}
	config.Tax = TaxConfig{
		Oracle:   getEnv("TAX_ORACLE", "slab"),
		Command:  strings.Fields(getEnv("TAX_ORACLE_COMMAND", "")),
		Timeout:  taxTimeout,
		CacheTTL: taxCacheTTL,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}

	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("CLIENT_SECRET is required when CLIENT_ID is set")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("REDIRECT_URL is required when CLIENT_ID is set")
		}
		if len(c.OAuth2Google.Scopes) == 0 {
			return fmt.Errorf("SCOPES is required when CLIENT_ID is set")
		}
	}

	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}

	if c.Payroll.WorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_WORKING_DAYS must be positive")
	}
	if c.Payroll.HoursPerDay <= 0 {
		return fmt.Errorf("PAYROLL_HOURS_PER_DAY must be positive")
	}
	if c.Payroll.OvertimeMultiplier.IsNegative() {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must not be negative")
	}

	switch c.Tax.Oracle {
	case "slab":
	case "command":
		if len(c.Tax.Command) == 0 {
			return fmt.Errorf("TAX_ORACLE_COMMAND is required when TAX_ORACLE=command")
		}
	default:
		return fmt.Errorf("unsupported TAX_ORACLE: %s", c.Tax.Oracle)
	}
	if c.Tax.Timeout <= 0 {
		return fmt.Errorf("TAX_ORACLE_TIMEOUT must be positive")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
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
