package config

import (
	"fmt"
	"strings"
)

// RedisConfig holds suggestion cache configuration.
type RedisConfig struct {
	// Enabled turns the Redis cache on; when off, every lookup misses.
	Enabled bool
	// URL is a redis:// connection URL.
	URL string
	// KeyPrefix namespaces keys per environment (e.g. "dev:").
	KeyPrefix string
}

// LoadRedisConfigFromEnv loads Redis configuration from environment variables.
func LoadRedisConfigFromEnv() RedisConfig {
	return RedisConfig{
		Enabled:   GetEnvBool("REDIS_ENABLED", false),
		URL:       GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		KeyPrefix: GetEnv("REDIS_KEY_PREFIX", "teammatch:"),
	}
}

// Validate validates Redis configuration.
func (c RedisConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return fmt.Errorf("invalid REDIS_URL: %q (must start with redis:// or rediss://)", c.URL)
	}
	return nil
}
