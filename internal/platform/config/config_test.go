package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testPostgresDSN    = "postgres://localhost/test"
	testErrLoad        = "Load() error = %v"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want local", cfg.AppEnv)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort = %d, want 8080", cfg.HealthPort)
	}

	if cfg.Database.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q", cfg.Database.PostgresDSN)
	}

	if cfg.Search.Model != "gpt-4o-mini" || cfg.Search.MaxResults != 10 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}

	if !cfg.Validation.Enabled || cfg.Validation.Timeout != 8*time.Second {
		t.Errorf("validation defaults = %+v", cfg.Validation)
	}

	if cfg.Generation.WorkspaceID != "default" || cfg.Generation.LookbackDays != 0 {
		t.Errorf("generation defaults = %+v", cfg.Generation)
	}
}

func TestLoad_MissingDSN(t *testing.T) {
	if v, ok := os.LookupEnv(testEnvPostgresDSN); ok {
		t.Setenv(testEnvPostgresDSN, v)
		os.Unsetenv(testEnvPostgresDSN)
	}

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without POSTGRES_DSN, want error")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("VALIDATE_URLS", "false")
	t.Setenv("LOOKBACK_DAYS", "7")
	t.Setenv("SEARCH_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "prod" {
		t.Errorf("AppEnv = %q, want prod", cfg.AppEnv)
	}

	if cfg.Validation.Enabled {
		t.Error("Validation.Enabled = true, want false")
	}

	if cfg.Generation.LookbackDays != 7 {
		t.Errorf("LookbackDays = %d, want 7", cfg.Generation.LookbackDays)
	}

	if cfg.Search.Timeout != 45*time.Second {
		t.Errorf("Search.Timeout = %v, want 45s", cfg.Search.Timeout)
	}
}
