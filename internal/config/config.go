package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
)

// Defaults for every key. Env overrides only apply to keys that have one.
const (
	DefaultServerPort      = "8080"
	DefaultServerMode      = "development"
	DefaultShutdownTimeout = 5 * time.Second

	DefaultDatabaseDriver = "pgx"
	DefaultDatabaseHost   = "localhost"
	DefaultDatabasePort   = "5432"
	DefaultDatabaseUser   = "kanso_user"
	DefaultDatabaseName   = "kanso_db"
	DefaultSQLitePath     = "kanso.db"

	DefaultRedisHost = "localhost"
	DefaultRedisPort = "6379"

	DefaultJWTIssuer = "kanso-tally"
	DefaultTokenTTL  = 24 * time.Hour

	DefaultTimezone        = "UTC"
	DefaultReferenceHour   = 12
	DefaultMinWindow       = 7
	DefaultWorkerQueueSize = 100
	DefaultPendingTTL      = 30 * time.Minute

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	minSecretLen = 32
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

var (
	ErrInvalidDriver        = errors.New("database.driver must be pgx, postgres, sqlite3 or memory")
	ErrMissingJWTSecret     = errors.New("auth.jwt_secret is required")
	ErrWeakJWTSecret        = fmt.Errorf("auth.jwt_secret must be at least %d characters", minSecretLen)
	ErrInvalidTokenTTL      = errors.New("auth.token_ttl must be positive")
	ErrInvalidTimezone      = errors.New("tracker.timezone is not a known location")
	ErrInvalidReferenceHour = errors.New("tracker.reference_hour must be within 1..22")
	ErrInvalidMinWindow     = errors.New("tracker.min_window must be at least 1")
	ErrInvalidQueueSize     = errors.New("tracker.worker_queue_size must be at least 1")
	ErrInvalidPendingTTL    = errors.New("tracker.pending_ttl must be positive")
	ErrInvalidRateLimit     = errors.New("rate_limit.requests and rate_limit.window must be positive")
	ErrInvalidLogLevel      = errors.New("logging.level must be debug, info, warn or error")
	ErrInvalidLogFormat     = errors.New("logging.format must be json or text")
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Mode == DefaultServerMode
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// DSN builds the connection string for the configured driver. The memory
// driver has none.
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverSQLite:
		return d.Path
	case DriverMemory:
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type TrackerConfig struct {
	Timezone        string `mapstructure:"timezone"`
	ReferenceHour   int    `mapstructure:"reference_hour"`
	MinWindow       int    `mapstructure:"min_window"`
	WorkerQueueSize int    `mapstructure:"worker_queue_size"`

	// PendingTTL is how long an unanswered detail-entry flow stays open.
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

// Location resolves Timezone. Validate has already checked it loads.
func (t TrackerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (t TrackerConfig) Calendar() (domain.Calendar, error) {
	return domain.NewCalendar(t.Location(), t.ReferenceHour)
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the loaded values. The JWT secret is only required when
// requireSecret is set, so offline commands work without one.
func (c *Config) Validate(requireSecret bool) error {
	var errs []error

	switch c.Database.Driver {
	case DriverPgx, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidDriver, c.Database.Driver))
	}

	if requireSecret {
		switch {
		case c.Auth.JWTSecret == "":
			errs = append(errs, ErrMissingJWTSecret)
		case len(c.Auth.JWTSecret) < minSecretLen:
			errs = append(errs, ErrWeakJWTSecret)
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, ErrInvalidTokenTTL)
	}

	if _, err := time.LoadLocation(c.Tracker.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Tracker.Timezone))
	}
	if c.Tracker.ReferenceHour < 1 || c.Tracker.ReferenceHour > 22 {
		errs = append(errs, ErrInvalidReferenceHour)
	}
	if c.Tracker.MinWindow < 1 {
		errs = append(errs, ErrInvalidMinWindow)
	}
	if c.Tracker.WorkerQueueSize < 1 {
		errs = append(errs, ErrInvalidQueueSize)
	}
	if c.Tracker.PendingTTL <= 0 {
		errs = append(errs, ErrInvalidPendingTTL)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, ErrInvalidLogFormat)
	}

	return errors.Join(errs...)
}
