// Package config loads the application configuration from the environment.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map them into the Config struct tree with koanf.
//   - Validate required values so the app fails fast on bad/missing config.
//   - Inject defaults for optional blocks (observability, session, jobs).
//
// Variables use the COMMERCE_ prefix and a double underscore for nesting:
//
//	COMMERCE_DATABASE__HOST        -> database.host
//	COMMERCE_SERVER__READ_TIMEOUT  -> server.read_timeout
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	// Loads a `.env` file into the process environment before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "COMMERCE_"

// Config is the root configuration object.
//
// Observability, Session and Jobs are pointers because they are optional;
// Load fills in defaults when they are missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Session       *SessionConfig       `koanf:"session"`
	Jobs          *JobsConfig          `koanf:"jobs"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds the runtime environment name (local, development, production).
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// DSN builds the postgres:// connection string, escaping the password.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig contains the Redis address ("host:port").
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores the Clerk secret key used by admin routes.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// SessionConfig controls how admin flash messages and saved form data
// are kept between two requests.
type SessionConfig struct {
	// Header carries the admin session id; flash messages are keyed by it.
	Header string `koanf:"header" validate:"required"`

	// FlashTTL bounds how long an unread message survives.
	FlashTTL time.Duration `koanf:"flash_ttl" validate:"min=1s"`

	// QuoteTTL bounds how long an untouched order-create quote is kept.
	QuoteTTL time.Duration `koanf:"quote_ttl" validate:"min=1m"`
}

// JobsConfig configures the asynq worker and scheduler.
type JobsConfig struct {
	Concurrency int `koanf:"concurrency" validate:"min=1"`

	// ReportsRatingCron schedules the bestsellers rating refresh.
	// Empty disables the schedule.
	ReportsRatingCron string `koanf:"reports_rating_cron"`
}

// DefaultSessionConfig returns the session defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		Header:   "X-Admin-Session",
		FlashTTL: 10 * time.Minute,
		QuoteTTL: 24 * time.Hour,
	}
}

// DefaultJobsConfig returns the worker defaults.
func DefaultJobsConfig() *JobsConfig {
	return &JobsConfig{
		Concurrency:       10,
		ReportsRatingCron: "0 3 * * *",
	}
}

// Load reads the environment, unmarshals it into Config, validates it and
// applies defaults for the optional blocks.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")

		// List values are comma separated.
		if strings.HasSuffix(key, "origins") {
			return key, strings.Split(value, ",")
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Session fields left unset fall back to their defaults one by one.
	if mainConfig.Session == nil {
		mainConfig.Session = &SessionConfig{}
	}
	if err := mergo.Merge(mainConfig.Session, DefaultSessionConfig()); err != nil {
		return nil, fmt.Errorf("could not apply session defaults: %w", err)
	}
	if mainConfig.Jobs == nil {
		mainConfig.Jobs = DefaultJobsConfig()
	}
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary block so
	// logs and traces agree.
	mainConfig.Observability.ServiceName = "commerce"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validate.Struct(mainConfig.Session); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if err := validate.Struct(mainConfig.Jobs); err != nil {
		return nil, fmt.Errorf("invalid jobs config: %w", err)
	}
	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
