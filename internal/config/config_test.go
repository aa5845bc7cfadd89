package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"NATS_SUBJECT", "VALIDATE_PDF", "JOB_TIMEOUT_SECONDS",
		"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.NATSSubject != "highlights.extract" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.ValidatePDF {
		t.Fatalf("expected validation off by default")
	}
	if cfg.JobTimeout() != 5*time.Minute {
		t.Fatalf("expected 5m job timeout, got %v", cfg.JobTimeout())
	}
	if cfg.APIRateLimitRPS != 10 || cfg.APIRateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
	if cfg.MaxUploadBytes != 64<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("VALIDATE_PDF", "true")
	t.Setenv("STRICT_VALIDATION", "1")
	t.Setenv("JOB_TIMEOUT_SECONDS", "0")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_BACKPRESSURE_WAIT_MS", "100")

	cfg := Load()
	if !cfg.ValidatePDF || !cfg.StrictValidation {
		t.Fatalf("expected validation flags set, got %+v", cfg)
	}
	if cfg.JobTimeout() != 0 {
		t.Fatalf("expected no job timeout, got %v", cfg.JobTimeout())
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BackpressureWait() != 100*time.Millisecond {
		t.Fatalf("unexpected backpressure wait %v", cfg.BackpressureWait())
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_BURST", "lots")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.APIRateLimitBurst != 20 || cfg.APIRateLimitRPS != 10 {
		t.Fatalf("expected fallbacks, got %d/%v", cfg.APIRateLimitBurst, cfg.APIRateLimitRPS)
	}
}
