// Package config loads and validates application configuration from the environment.
package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
	// Redis holds suggestion cache configuration.
	Redis RedisConfig
	// NATS holds notification publisher configuration.
	NATS NATSConfig
	// Matching holds candidate ranking configuration.
	Matching MatchingConfig
	// Requests holds request broker configuration.
	Requests RequestsConfig
	// Scheduler holds background job configuration.
	Scheduler SchedulerConfig
	// Auth holds bearer token verification configuration.
	Auth AuthConfig
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		Server:    LoadServerConfigFromEnv(),
		Logger:    LoadLoggerConfigFromEnv(),
		GinMode:   GetEnv("GIN_MODE", "release"),
		Redis:     LoadRedisConfigFromEnv(),
		NATS:      LoadNATSConfigFromEnv(),
		Matching:  LoadMatchingConfigFromEnv(),
		Requests:  LoadRequestsConfigFromEnv(),
		Scheduler: LoadSchedulerConfigFromEnv(),
		Auth:      LoadAuthConfigFromEnv(),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config validation failed: %w", err)
	}
	if err := c.NATS.Validate(); err != nil {
		return fmt.Errorf("nats config validation failed: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching config validation failed: %w", err)
	}
	if err := c.Requests.Validate(); err != nil {
		return fmt.Errorf("requests config validation failed: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	return nil
}
