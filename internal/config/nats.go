package config

import "fmt"

// NATSConfig holds notification publisher configuration.
type NATSConfig struct {
	// Enabled turns request notifications on.
	Enabled bool
	// URL is the NATS server URL.
	URL string
	// SubjectPrefix is prepended to every published subject.
	SubjectPrefix string
}

// LoadNATSConfigFromEnv loads NATS configuration from environment variables.
func LoadNATSConfigFromEnv() NATSConfig {
	return NATSConfig{
		Enabled:       GetEnvBool("NATS_ENABLED", false),
		URL:           GetEnv("NATS_URL", "nats://localhost:4222"),
		SubjectPrefix: GetEnv("NATS_SUBJECT_PREFIX", "teammatch"),
	}
}

// Validate validates NATS configuration.
func (c NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS is enabled")
	}
	if c.SubjectPrefix == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must not be empty")
	}
	return nil
}
