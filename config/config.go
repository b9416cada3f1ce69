package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration

	// Store configuration
	StoreBackend string
	IDStrategy   string
	Seed         bool
	SeedFile     string

	// Logging
	LogLevel  string
	LogFormat string

	// Redis configuration, only used for rate limiting
	RedisURL      string
	RedisPassword string

	// Rate limiting, disabled when RateLimitRequests is 0
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", string(Development))
	v.SetDefault("ci", false)
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("shutdown.timeout", 5*time.Second)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.id_strategy", "uuid")
	v.SetDefault("store.seed", true)
	v.SetDefault("store.seed_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.password", "")

	v.SetDefault("rate_limit.requests", 0)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("metrics.enabled", true)

	// SERVER_PORT, STORE_ID_STRATEGY, RATE_LIMIT_WINDOW, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig builds the configuration from defaults, an optional config file
// named by CONFIG_FILE and environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	v := newViper()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Environment:        ParseEnvironment(v.GetString("env"), v.GetBool("ci")),
		ServerHost:         v.GetString("server.host"),
		ServerPort:         v.GetString("server.port"),
		ShutdownTimeout:    v.GetDuration("shutdown.timeout"),
		StoreBackend:       strings.ToLower(v.GetString("store.backend")),
		IDStrategy:         strings.ToLower(v.GetString("store.id_strategy")),
		Seed:               v.GetBool("store.seed"),
		SeedFile:           v.GetString("store.seed_file"),
		LogLevel:           v.GetString("log.level"),
		LogFormat:          strings.ToLower(v.GetString("log.format")),
		RedisURL:           v.GetString("redis.url"),
		RedisPassword:      v.GetString("redis.password"),
		RateLimitRequests:  v.GetInt("rate_limit.requests"),
		RateLimitWindow:    v.GetDuration("rate_limit.window"),
		CORSAllowedOrigins: stringList(v, "cors.allowed_origins"),
		MetricsEnabled:     v.GetBool("metrics.enabled"),
	}

	if cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// stringList reads key either as a comma separated string (environment) or as
// a list (config file)
func stringList(v *viper.Viper, key string) []string {
	var parts []string
	switch raw := v.Get(key).(type) {
	case nil:
	case string:
		parts = strings.Split(raw, ",")
	default:
		parts = v.GetStringSlice(key)
	}

	var out []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
