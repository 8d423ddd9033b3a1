package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName      = "kanso"
	configType      = "yaml"
	envPrefix       = "KANSO"
	envKeySeparator = "_"
)

// Options tune Load. The zero value searches ./kanso.yaml, reads .env and
// requires a JWT secret.
type Options struct {
	// ConfigPath is an explicit config file. Missing explicit files fail.
	ConfigPath string

	// EnvFile is loaded into the process environment before viper reads it.
	// Defaults to ".env"; a missing file is ignored.
	EnvFile string

	// SkipSecret relaxes validation for commands that never issue tokens.
	SkipSecret bool
}

// Load resolves configuration from defaults, an optional YAML file and
// KANSO_ prefixed environment variables, in increasing priority.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(!opts.SkipSecret); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	applyDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.host", DefaultDatabaseHost)
	v.SetDefault("database.port", DefaultDatabasePort)
	v.SetDefault("database.user", DefaultDatabaseUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", DefaultDatabaseName)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", DefaultSQLitePath)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", DefaultRedisHost)
	v.SetDefault("redis.port", DefaultRedisPort)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", DefaultJWTIssuer)
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)

	v.SetDefault("tracker.timezone", DefaultTimezone)
	v.SetDefault("tracker.reference_hour", DefaultReferenceHour)
	v.SetDefault("tracker.min_window", DefaultMinWindow)
	v.SetDefault("tracker.worker_queue_size", DefaultWorkerQueueSize)
	v.SetDefault("tracker.pending_ttl", DefaultPendingTTL)

	v.SetDefault("rate_limit.requests", DefaultRateLimitRequests)
	v.SetDefault("rate_limit.window", DefaultRateLimitWindow)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
