package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"spendly/backend/models"
)

func clearFirebaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV",
		"FIREBASE_PROJECT_ID", "FIREBASE_API_KEY",
		"FIREBASE_SERVICE_ACCOUNT_JSON", "FIREBASE_SERVICE_ACCOUNT_BASE64",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"CORS_ALLOWED_ORIGINS", "SESSION_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearFirebaseEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.IsProduction() {
		t.Error("development config must not report production")
	}
	if cfg.SessionSweepInterval != time.Minute {
		t.Errorf("expected default sweep interval 1m, got %s", cfg.SessionSweepInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearFirebaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FIREBASE_PROJECT_ID", "spendly-prod")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("SESSION_SWEEP_INTERVAL", "30s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.FirebaseProjectID != "spendly-prod" {
		t.Errorf("unexpected project id %s", cfg.FirebaseProjectID)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SessionSweepInterval != 30*time.Second {
		t.Errorf("expected sweep interval 30s, got %s", cfg.SessionSweepInterval)
	}
}

func TestValidateMissingSettings(t *testing.T) {
	clearFirebaseEnv(t)

	cfg := Load()
	err := cfg.Validate()

	var configErr *models.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	for _, key := range []string{"FIREBASE_PROJECT_ID", "FIREBASE_API_KEY", "FIREBASE_SERVICE_ACCOUNT_JSON"} {
		if !strings.Contains(configErr.Message, key) {
			t.Errorf("expected %s in message, got %q", key, configErr.Message)
		}
	}
}

func TestValidateComplete(t *testing.T) {
	clearFirebaseEnv(t)
	t.Setenv("FIREBASE_PROJECT_ID", "spendly-dev")
	t.Setenv("FIREBASE_API_KEY", "api-key")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_BASE64", "e30=")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
