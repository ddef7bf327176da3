// Package config loads TabletATF settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfigPath names the environment variable holding the YAML path.
const EnvConfigPath = "ATF_CONFIG"

// DefaultConfigPath is tried when EnvConfigPath is unset.
const DefaultConfigPath = "./atf.yaml"

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
	CORS   CORSConfig   `yaml:"cors"`
	Auth   AuthConfig   `yaml:"auth"`
	Limit  LimitConfig  `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"ATF_SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"ATF_SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"ATF_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"ATF_SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ATF_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"ATF_SERVER_MAX_BODY_BYTES"   env-default:"8388608"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig points at the sqlite lookup database. An empty Path disables
// glossary and translation lookups.
type StoreConfig struct {
	Path     string `yaml:"path"      env:"ATF_STORE_PATH"`
	ReadOnly bool   `yaml:"read_only" env:"ATF_STORE_READ_ONLY" env-default:"false"`
}

// CacheConfig controls the gloss cache in front of the store.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"         env:"ATF_CACHE_TTL"         env-default:"10m"`
	MaxEntries int           `yaml:"max_entries" env:"ATF_CACHE_MAX_ENTRIES" env-default:"10000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"ATF_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"ATF_LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"ATF_CORS_ALLOWED_ORIGINS" env-default:"*"`
	MaxAge         int    `yaml:"max_age"         env:"ATF_CORS_MAX_AGE"         env-default:"600"`
}

// AuthConfig protects the import endpoints. An empty APIKey disables them.
type AuthConfig struct {
	APIKey string `yaml:"api_key" env:"ATF_API_KEY"`
}

// MinAPIKeyLength is the shortest accepted API key.
const MinAPIKeyLength = 16

// LimitConfig holds per-client rate limits; 0 requests per minute disables it.
type LimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"ATF_RATE_LIMIT_RPM"   env-default:"0"`
	Burst             int `yaml:"burst"               env:"ATF_RATE_LIMIT_BURST" env-default:"10"`
}

// Origins splits AllowedOrigins on commas, dropping blanks.
func (c CORSConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load reads configuration from path, or from ATF_CONFIG, or from
// DefaultConfigPath. Priority: ENV > YAML > env-default tags.
// A missing file is an error only when the path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges that the tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	if c.Auth.APIKey != "" && len(c.Auth.APIKey) < MinAPIKeyLength {
		return fmt.Errorf("auth.api_key must be at least %d characters (got %d)", MinAPIKeyLength, len(c.Auth.APIKey))
	}
	if c.Limit.RequestsPerMinute < 0 || c.Limit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	if c.Limit.RequestsPerMinute > 0 && c.Limit.Burst == 0 {
		return fmt.Errorf("rate_limit.burst must be positive when limiting is enabled")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not json or text", c.Log.Format)
	}
	return nil
}
