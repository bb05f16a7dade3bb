// Package config loads ambient runtime configuration for the ziplockctl
// CLI host (cmd/ziplock-core does not use it), generalized from fleetd's internal/config.Config:
// the same env/default-tag-documented struct plus getEnv* helper
// pattern, narrowed to the handful of settings this engine actually
// has (archive limits, key-derivation cost, TOTP defaults, repair
// policy) instead of a multi-service platform config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all engine-wide configuration.
type Config struct {
	Archive ArchiveConfig
	Crypto  CryptoConfig
	TOTP    TOTPConfig
	Repair  RepairConfig
}

// ArchiveConfig bounds the archive codec (spec.md §4.3).
type ArchiveConfig struct {
	MaxUncompressedSize int64  `env:"ZIPLOCK_ARCHIVE_MAX_UNCOMPRESSED_SIZE" default:"524288000"` // 500MiB
	Compression         string `env:"ZIPLOCK_ARCHIVE_COMPRESSION" default:"lzma"`
}

// CryptoConfig tunes key derivation (internal/archive/crypto.go).
type CryptoConfig struct {
	PBKDF2Iterations int `env:"ZIPLOCK_PBKDF2_ITERATIONS" default:"200000"`
}

// TOTPConfig holds RFC 6238 defaults (spec.md §4.1, §4.8).
type TOTPConfig struct {
	Digits int           `env:"ZIPLOCK_TOTP_DIGITS" default:"6"`
	Step   time.Duration `env:"ZIPLOCK_TOTP_STEP" default:"30s"`
}

// RepairConfig controls file-map deserialization leniency (spec.md §4.2,
// §9 "metadata recovery on load").
type RepairConfig struct {
	AllowRepair bool `env:"ZIPLOCK_ALLOW_REPAIR" default:"false"`
}

// Load reads configuration from environment variables, falling back to
// each field's documented default.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Archive.MaxUncompressedSize = getEnvInt64("ZIPLOCK_ARCHIVE_MAX_UNCOMPRESSED_SIZE", 500*1024*1024)
	cfg.Archive.Compression = getEnvString("ZIPLOCK_ARCHIVE_COMPRESSION", "lzma")

	cfg.Crypto.PBKDF2Iterations = getEnvInt("ZIPLOCK_PBKDF2_ITERATIONS", 200_000)

	cfg.TOTP.Digits = getEnvInt("ZIPLOCK_TOTP_DIGITS", 6)
	cfg.TOTP.Step = getEnvDuration("ZIPLOCK_TOTP_STEP", 30*time.Second)

	cfg.Repair.AllowRepair = getEnvBool("ZIPLOCK_ALLOW_REPAIR", false)

	return cfg, cfg.Validate()
}

// Validate checks that loaded values are sane.
func (c *Config) Validate() error {
	if c.Archive.MaxUncompressedSize < 1 {
		return fmt.Errorf("invalid archive max uncompressed size: %d", c.Archive.MaxUncompressedSize)
	}
	switch c.Archive.Compression {
	case "lzma", "zstd", "none":
	default:
		return fmt.Errorf("invalid archive compression %q (want lzma, zstd, or none)", c.Archive.Compression)
	}
	if c.Crypto.PBKDF2Iterations < 10_000 {
		return fmt.Errorf("invalid pbkdf2 iteration count: %d (too low for safe key stretching)", c.Crypto.PBKDF2Iterations)
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return fmt.Errorf("invalid totp digit count: %d (must be 6-8)", c.TOTP.Digits)
	}
	if c.TOTP.Step <= 0 {
		return fmt.Errorf("invalid totp step: %s", c.TOTP.Step)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
