package config

import "fmt"

// AuthConfig holds bearer token verification configuration.
type AuthConfig struct {
	// JWTSecret is the HMAC secret used to verify access tokens.
	JWTSecret string
}

// LoadAuthConfigFromEnv loads auth configuration from environment variables.
func LoadAuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret: GetEnv("JWT_SECRET", ""),
	}
}

// Validate validates auth configuration.
func (c AuthConfig) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	return nil
}
