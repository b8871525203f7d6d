package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setupAndRestoreEnv saves original env vars and sets new ones for testing.
func setupAndRestoreEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	originalEnv := make(map[string]string)
	for key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	for key, value := range envVars {
		os.Setenv(key, value)
	}
	return func() {
		for key := range envVars {
			os.Unsetenv(key)
		}
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		GinMode: "release",
		Matching: MatchingConfig{
			CacheTTL:       time.Hour,
			ScoringWorkers: 4,
			PoolScope:      "profiles",
		},
		Requests: RequestsConfig{
			TTL:             7 * 24 * time.Hour,
			PeerTeamMaxSize: 4,
		},
		Scheduler: SchedulerConfig{
			Enabled:               true,
			ExpirySweepInterval:   time.Minute,
			HealthRefreshInterval: time.Hour,
		},
		Auth: AuthConfig{JWTSecret: "0123456789abcdef"},
	}
}

func TestLoadFromEnv_DefaultValues(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{
		"SERVER_PORT":        "",
		"REQUEST_TTL":        "",
		"MATCHING_CACHE_TTL": "",
		"REDIS_ENABLED":      "",
	})
	defer restore()

	cfg := LoadFromEnv()
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, 7*24*time.Hour, cfg.Requests.TTL)
	assert.Equal(t, time.Hour, cfg.Matching.CacheTTL)
	assert.Equal(t, 4, cfg.Requests.PeerTeamMaxSize)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "profiles", cfg.Matching.PoolScope)
}

func TestLoadFromEnv_CustomValues(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{
		"SERVER_PORT":              ":9090",
		"LOG_LEVEL":                "debug",
		"GIN_MODE":                 "debug",
		"REDIS_ENABLED":            "true",
		"REDIS_URL":                "redis://cache:6379/1",
		"NATS_ENABLED":             "1",
		"MATCHING_SCORING_WORKERS": "16",
		"REQUEST_TTL":              "48h",
		"JWT_SECRET":               "a-very-long-test-secret",
	})
	defer restore()

	cfg := LoadFromEnv()
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, 16, cfg.Matching.ScoringWorkers)
	assert.Equal(t, 48*time.Hour, cfg.Requests.TTL)
	assert.Equal(t, "a-very-long-test-secret", cfg.Auth.JWTSecret)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"invalid server config", func(c *Config) { c.Server.ReadTimeout = 0 }, "server config validation failed"},
		{"invalid logger config", func(c *Config) { c.Logger.Level = "invalid" }, "logger config validation failed"},
		{"invalid gin mode", func(c *Config) { c.GinMode = "invalid" }, "invalid GIN_MODE"},
		{"invalid redis url", func(c *Config) {
			c.Redis = RedisConfig{Enabled: true, URL: "localhost:6379"}
		}, "redis config validation failed"},
		{"nats enabled without url", func(c *Config) {
			c.NATS = NATSConfig{Enabled: true, SubjectPrefix: "teammatch"}
		}, "nats config validation failed"},
		{"zero cache ttl", func(c *Config) { c.Matching.CacheTTL = 0 }, "matching config validation failed"},
		{"zero scoring workers", func(c *Config) { c.Matching.ScoringWorkers = 0 }, "MATCHING_SCORING_WORKERS"},
		{"peer team too large", func(c *Config) { c.Requests.PeerTeamMaxSize = 11 }, "PEER_TEAM_MAX_SIZE"},
		{"peer team too small", func(c *Config) { c.Requests.PeerTeamMaxSize = 1 }, "requests config validation failed"},
		{"sweep interval too short", func(c *Config) { c.Scheduler.ExpirySweepInterval = time.Millisecond }, "scheduler config validation failed"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth config validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("disabled sections skip validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis = RedisConfig{Enabled: false, URL: "garbage"}
		cfg.NATS = NATSConfig{Enabled: false}
		cfg.Scheduler = SchedulerConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("valid gin modes", func(t *testing.T) {
		for _, mode := range []string{"debug", "release", "test"} {
			cfg := validConfig()
			cfg.GinMode = mode
			assert.NoError(t, cfg.Validate(), "mode %s should be valid", mode)
		}
	})
}
