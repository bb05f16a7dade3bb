package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.MaxUncompressedSize != 500*1024*1024 {
		t.Errorf("expected default 500MiB cap, got %d", cfg.Archive.MaxUncompressedSize)
	}
	if cfg.Archive.Compression != "lzma" {
		t.Errorf("expected default compression lzma, got %q", cfg.Archive.Compression)
	}
	if cfg.Crypto.PBKDF2Iterations != 200_000 {
		t.Errorf("expected default 200000 iterations, got %d", cfg.Crypto.PBKDF2Iterations)
	}
	if cfg.TOTP.Digits != 6 {
		t.Errorf("expected default 6 totp digits, got %d", cfg.TOTP.Digits)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZIPLOCK_ARCHIVE_COMPRESSION", "zstd")
	t.Setenv("ZIPLOCK_ALLOW_REPAIR", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.Compression != "zstd" {
		t.Errorf("expected zstd override, got %q", cfg.Archive.Compression)
	}
	if !cfg.Repair.AllowRepair {
		t.Error("expected AllowRepair override to take effect")
	}
}

func TestValidateRejectsBadCompression(t *testing.T) {
	cfg := &Config{
		Archive: ArchiveConfig{MaxUncompressedSize: 1, Compression: "bogus"},
		Crypto:  CryptoConfig{PBKDF2Iterations: 200_000},
		TOTP:    TOTPConfig{Digits: 6, Step: 30 * time.Second},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid compression name")
	}
}
