package config

import (
	"fmt"
	"time"
)

// SchedulerConfig holds background job configuration.
type SchedulerConfig struct {
	// Enabled starts the background jobs.
	Enabled bool
	// ExpirySweepInterval is how often pending requests past expiry are persisted as expired.
	ExpirySweepInterval time.Duration
	// HealthRefreshInterval is how often team health scores are recomputed.
	HealthRefreshInterval time.Duration
}

// LoadSchedulerConfigFromEnv loads scheduler configuration from environment variables.
func LoadSchedulerConfigFromEnv() SchedulerConfig {
	return SchedulerConfig{
		Enabled:               GetEnvBool("SCHEDULER_ENABLED", true),
		ExpirySweepInterval:   GetEnvDuration("REQUEST_EXPIRY_SWEEP_INTERVAL", 10*time.Minute),
		HealthRefreshInterval: GetEnvDuration("TEAM_HEALTH_REFRESH_INTERVAL", time.Hour),
	}
}

// Validate validates scheduler configuration.
func (c SchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ExpirySweepInterval < time.Second {
		return fmt.Errorf("REQUEST_EXPIRY_SWEEP_INTERVAL must be at least 1s")
	}
	if c.HealthRefreshInterval < time.Second {
		return fmt.Errorf("TEAM_HEALTH_REFRESH_INTERVAL must be at least 1s")
	}
	return nil
}
