package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"spendly/backend/models"
)

// Config holds all environment-driven settings.
type Config struct {
	// HTTP server
	Port string
	Env  string

	// Firebase
	FirebaseProjectID         string
	FirebaseAPIKey            string
	FirebaseCredentialsJSON   string
	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	// CORS
	CORSAllowedOrigins []string

	// Session
	SessionSweepInterval time.Duration
}

// Load reads configuration from the environment, pulling in a local
// .env file when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env file")
	}

	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		Env:                       getEnv("APP_ENV", "development"),
		FirebaseProjectID:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:            getEnv("FIREBASE_API_KEY", ""),
		FirebaseCredentialsJSON:   getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialsBase64: getEnv("FIREBASE_SERVICE_ACCOUNT_BASE64", ""),
		FirebaseCredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		SessionSweepInterval:      getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORSAllowedOrigins = strings.Split(origins, ",")
	}

	return cfg
}

// IsProduction reports whether the service runs with production
// strictness.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the Firebase settings. In production a missing
// setting is fatal; elsewhere the caller may degrade to the disabled
// backend.
func (c *Config) Validate() error {
	var missing []string
	if c.FirebaseProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if c.FirebaseAPIKey == "" {
		missing = append(missing, "FIREBASE_API_KEY")
	}
	if c.FirebaseCredentialsJSON == "" && c.FirebaseCredentialsBase64 == "" && c.FirebaseCredentialsFile == "" {
		missing = append(missing, "FIREBASE_SERVICE_ACCOUNT_JSON")
	}

	if len(missing) > 0 {
		return &models.ConfigurationError{
			Message: fmt.Sprintf("Missing required environment variables: %s. Please copy env-template.txt to .env and fill in your Firebase credentials.", strings.Join(missing, ", ")),
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
