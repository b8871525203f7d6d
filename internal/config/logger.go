package config

import "fmt"

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string
	// Format is the logging format (json, console).
	Format string
	// Output is stdout, stderr, or a file path rotated by size.
	Output string
	// MaxSizeMB is the size at which a log file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// LoadLoggerConfigFromEnv loads logger configuration from environment variables.
func LoadLoggerConfigFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:      GetEnv("LOG_LEVEL", "info"),
		Format:     GetEnv("LOG_FORMAT", "json"),
		Output:     GetEnv("LOG_OUTPUT", "stdout"),
		MaxSizeMB:  GetEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: GetEnvInt("LOG_MAX_BACKUPS", 3),
		MaxAgeDays: GetEnvInt("LOG_MAX_AGE_DAYS", 28),
		Compress:   GetEnvBool("LOG_COMPRESS", false),
	}
}

// Validate validates logger configuration.
func (c LoggerConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be: debug, info, warn, error)", c.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s (must be: json, console)", c.Format)
	}

	if c.IsFileOutput() && c.MaxSizeMB <= 0 {
		return fmt.Errorf("LOG_MAX_SIZE_MB must be greater than 0 for file output")
	}

	return nil
}

// IsProduction returns true if logger is configured for production.
func (c LoggerConfig) IsProduction() bool {
	return c.Format == "json" && c.Level != "debug"
}

// IsFileOutput reports whether logs are written to a rotated file.
func (c LoggerConfig) IsFileOutput() bool {
	return c.Output != "" && c.Output != "stdout" && c.Output != "stderr"
}
