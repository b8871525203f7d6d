package config

import (
	"fmt"
	"time"
)

// MatchingConfig holds candidate ranking configuration.
type MatchingConfig struct {
	// CacheTTL is how long a suggestion list stays cached.
	CacheTTL time.Duration
	// ScoringWorkers bounds concurrent candidate scoring.
	ScoringWorkers int
	// EmbeddingEnabled turns the embedding oracle on.
	EmbeddingEnabled bool
	// PoolScope is the oracle collection candidates are drawn from.
	PoolScope string
}

// LoadMatchingConfigFromEnv loads matching configuration from environment variables.
func LoadMatchingConfigFromEnv() MatchingConfig {
	return MatchingConfig{
		CacheTTL:         GetEnvDuration("MATCHING_CACHE_TTL", time.Hour),
		ScoringWorkers:   GetEnvInt("MATCHING_SCORING_WORKERS", 8),
		EmbeddingEnabled: GetEnvBool("MATCHING_EMBEDDING_ENABLED", true),
		PoolScope:        GetEnv("MATCHING_POOL_SCOPE", "profiles"),
	}
}

// Validate validates matching configuration.
func (c MatchingConfig) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("MATCHING_CACHE_TTL must be greater than 0")
	}
	if c.ScoringWorkers <= 0 {
		return fmt.Errorf("MATCHING_SCORING_WORKERS must be greater than 0")
	}
	if c.PoolScope == "" {
		return fmt.Errorf("MATCHING_POOL_SCOPE must not be empty")
	}
	return nil
}

// RequestsConfig holds request broker configuration.
type RequestsConfig struct {
	// TTL is the lifetime of a pending request.
	TTL time.Duration
	// PeerTeamMaxSize is the capacity of teams formed from accepted peer requests.
	PeerTeamMaxSize int
}

// LoadRequestsConfigFromEnv loads request broker configuration from environment variables.
func LoadRequestsConfigFromEnv() RequestsConfig {
	return RequestsConfig{
		TTL:             GetEnvDuration("REQUEST_TTL", 7*24*time.Hour),
		PeerTeamMaxSize: GetEnvInt("PEER_TEAM_MAX_SIZE", 4),
	}
}

// Validate validates request broker configuration.
func (c RequestsConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("REQUEST_TTL must be greater than 0")
	}
	if c.PeerTeamMaxSize < 2 || c.PeerTeamMaxSize > 10 {
		return fmt.Errorf("PEER_TEAM_MAX_SIZE must be between 2 and 10, got %d", c.PeerTeamMaxSize)
	}
	return nil
}
