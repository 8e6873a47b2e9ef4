package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// The services run as pods with their settings injected as environment
// variables. A .env file in the working directory is read as well for local runs.

type Config struct {
	IsLocalDev bool `mapstructure:"IS_LOCAL_DEV"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	AWSRegion          string `mapstructure:"AWS_REGION"`
	AWSEndpoint        string `mapstructure:"AWS_ENDPOINT"`
	PayrollSQSQueueURL string `mapstructure:"PAYROLL_SQS_QUEUE_URL"`
	EmailSQSQueueURL   string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	PayrollAPIURL      string `mapstructure:"PAYROLL_API_URL"`
	EmailSender        string `mapstructure:"EMAIL_SENDER"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTIssuer       string        `mapstructure:"JWT_ISSUER"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	BcryptCost      int           `mapstructure:"BCRYPT_COST"`
	MaxFailedLogins int           `mapstructure:"MAX_FAILED_LOGINS"`

	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	ClockLockTTL time.Duration `mapstructure:"CLOCK_LOCK_TTL"`

	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`

	// MetricsPort serves /metrics for the queue workers.
	MetricsPort string `mapstructure:"METRICS_PORT"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var keys = map[string]any{
	"IS_LOCAL_DEV":          false,
	"DB_DRIVER":             DriverPostgres,
	"DB_HOST":               "db",
	"DB_PORT":               "5432",
	"DB_USER":               "user",
	"DB_PASSWORD":           "password",
	"DB_NAME":               "timesheets_db",
	"SQLITE_PATH":           "timesheets.db",
	"SERVER_PORT":           "8080",
	"AWS_REGION":            "us-east-1",
	"AWS_ENDPOINT":          "http://localstack:4566",
	"PAYROLL_SQS_QUEUE_URL": "http://localstack:4566/000000000000/payroll-queue",
	"EMAIL_SQS_QUEUE_URL":   "http://localstack:4566/000000000000/email-queue",
	"PAYROLL_API_URL":       "http://localhost:8081/",
	"EMAIL_SENDER":          "no-reply@timesheets.local",
	"JWT_SECRET":            "",
	"JWT_ISSUER":            "timesheets.service",
	"SESSION_TTL":           "24h",
	"BCRYPT_COST":           10,
	"MAX_FAILED_LOGINS":     5,
	"REDIS_ADDR":            "",
	"CLOCK_LOCK_TTL":        "10s",
	"TRACING_EXPORTER":      "otlp",
	"OTLP_ENDPOINT":         "jaeger:4317",
	"METRICS_PORT":          "9090",
}

// localDevSecret signs tokens when IS_LOCAL_DEV is set and no secret is configured.
const localDevSecret = "local-dev-secret"

// LoadConfig reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func LoadConfig() (config Config, err error) {
	v := viper.New()
	for k, def := range keys {
		v.SetDefault(k, def)
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("reading .env: %w", err)
		}
		err = nil
	}

	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	if config.IsLocalDev && config.JWTSecret == "" {
		config.JWTSecret = localDevSecret
	}
	return config, config.Validate()
}

// Validate reports the first setting that would keep a service from starting.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside local development")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.MaxFailedLogins <= 0 {
		return fmt.Errorf("MAX_FAILED_LOGINS must be positive, got %d", c.MaxFailedLogins)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// PostgresDSN is the URL form used by both the pgx driver and golang-migrate.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
