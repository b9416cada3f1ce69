package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	storeBackends = []string{"memory", "sqlite"}
	idStrategies  = []string{"uuid", "counter"}
	logFormats    = []string{"text", "json"}
)

// ValidateConfig checks every field and reports all problems at once
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 0 || port > 65535 {
		add("SERVER_PORT", "must be a port number, got %q", cfg.ServerPort)
	}
	if cfg.ShutdownTimeout <= 0 {
		add("SHUTDOWN_TIMEOUT", "must be positive")
	}

	if !slices.Contains(storeBackends, cfg.StoreBackend) {
		add("STORE_BACKEND", "must be one of %v, got %q", storeBackends, cfg.StoreBackend)
	}
	if !slices.Contains(idStrategies, cfg.IDStrategy) {
		add("STORE_ID_STRATEGY", "must be one of %v, got %q", idStrategies, cfg.IDStrategy)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		add("LOG_LEVEL", "%v", err)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		add("LOG_FORMAT", "must be one of %v, got %q", logFormats, cfg.LogFormat)
	}

	if cfg.RedisURL != "" {
		if u, err := url.Parse(cfg.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			add("REDIS_URL", "must be a redis:// or rediss:// URL")
		}
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		add("CORS_ALLOWED_ORIGINS", "must list at least one origin, or \"*\" for any")
	}

	if cfg.RateLimitRequests < 0 {
		add("RATE_LIMIT_REQUESTS", "must not be negative")
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		add("RATE_LIMIT_WINDOW", "must be positive when rate limiting is enabled")
	}

	return errors.Join(errs...)
}
