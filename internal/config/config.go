package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/hongminglow/auth-examples/internal/auth"
	"github.com/hongminglow/auth-examples/internal/ratelimit"
)

const (
	defaultDatabaseURL = "sqlite:///users.db"
	defaultRateLimit   = "5 per minute"
	defaultConfigFile  = "config.yaml"
)

// Config holds runtime configuration sourced from an optional YAML file and
// env vars.
type Config struct {
	Port                string            `yaml:"port"`
	DatabaseURL         string            `yaml:"database_url"`
	SecretKey           string            `yaml:"secret_key"`
	JWTTTLMinutes       int               `yaml:"jwt_ttl_minutes"`
	APIKey              string            `yaml:"api_key"`
	RateLimit           string            `yaml:"rate_limit"`
	RateLimitStorageURL string            `yaml:"rate_limit_storage_url"`
	CORSOrigins         []string          `yaml:"cors_allowed_origins"`
	LogLevel            string            `yaml:"log_level"`
	LogFormat           string            `yaml:"log_format"`
	MetricsEnabled      bool              `yaml:"metrics_enabled"`
	BasicAuthUsers      map[string]string `yaml:"basic_auth_users"`
	BcryptCost          int               `yaml:"bcrypt_cost"`

	// Rate is RateLimit parsed by Load.
	Rate ratelimit.Rate `yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	users := make(map[string]string, len(auth.DefaultBasicUsers))
	for u, p := range auth.DefaultBasicUsers {
		users[u] = p
	}
	return Config{
		Port:                "8080",
		DatabaseURL:         defaultDatabaseURL,
		SecretKey:           auth.DefaultSecret,
		JWTTTLMinutes:       60,
		RateLimit:           defaultRateLimit,
		RateLimitStorageURL: "memory://",
		CORSOrigins:         []string{"*"},
		LogLevel:            "info",
		LogFormat:           "text",
		MetricsEnabled:      true,
		BasicAuthUsers:      users,
		BcryptCost:          bcrypt.DefaultCost,
	}
}

// Load reads defaults, then the YAML file named by CONFIG_FILE (or
// ./config.yaml when present), then env vars, and validates the result.
func Load() (Config, error) {
	cfg := Defaults()

	if path := configFile(); path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values and fills Rate. A blank SecretKey falls
// back to auth.DefaultSecret so UsesDefaultSecret reports it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		c.SecretKey = auth.DefaultSecret
	}
	if c.JWTTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	if !strings.HasPrefix(c.DatabaseURL, "sqlite://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL: unsupported scheme in %q", c.DatabaseURL)
	}
	rate, err := ratelimit.ParseRate(c.RateLimit)
	if err != nil {
		return fmt.Errorf("RATE_LIMIT: %w", err)
	}
	c.Rate = rate
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if len(c.BasicAuthUsers) == 0 {
		return errors.New("basic_auth_users must not be empty")
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// JWTTTL returns the token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// UsesDefaultSecret reports whether tokens are signed with the built-in,
// publicly known secret.
func (c Config) UsesDefaultSecret() bool {
	return c.SecretKey == auth.DefaultSecret
}

func configFile() string {
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// loadYAMLFile overlays the file onto cfg; keys absent from the file keep
// their current values. A basic_auth_users table in the file replaces the
// default table instead of merging into it.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	defaults := cfg.BasicAuthUsers
	cfg.BasicAuthUsers = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.BasicAuthUsers == nil {
		cfg.BasicAuthUsers = defaults
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SecretKey, "SECRET_KEY")
	setString(&cfg.APIKey, "API_KEY")
	setString(&cfg.RateLimit, "RATE_LIMIT")
	setString(&cfg.RateLimitStorageURL, "RATE_LIMIT_STORAGE_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v := env("JWT_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			cfg.JWTTTLMinutes = minutes
		}
	}
	if v := env("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = cost
		}
	}
	if v := env("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSOrigins = parseCSV(v)
	}
	if v := env("METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
