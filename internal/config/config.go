// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL  string // PostgreSQL connection string (optional, uses in-memory if not set)
	ResultsTable string // destination table for prediction rows

	// Model artifacts (loaded once at startup, read-only afterwards)
	ModelPath  string
	ScalerPath string

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint; tracing disabled when empty
}

// Defaults
const (
	DefaultPort         = "8080"
	DefaultEnv          = "development"
	DefaultLogLevel     = "info"
	DefaultResultsTable = "fraud_predictions"
)

var (
	defaultModelPath  = filepath.Join("models", "model.json")
	defaultScalerPath = filepath.Join("models", "scaler.json")

	// identifierRe matches a bare SQL identifier. The table name is
	// configuration, not user input, but it still must never reach a query
	// unvalidated.
	identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:  os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		ResultsTable: getEnv("RESULTS_TABLE", DefaultResultsTable),
		ModelPath:    getEnv("MODEL_PATH", defaultModelPath),
		ScalerPath:   getEnv("SCALER_PATH", defaultScalerPath),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if c.ScalerPath == "" {
		return fmt.Errorf("SCALER_PATH is required")
	}
	if !identifierRe.MatchString(c.ResultsTable) {
		return fmt.Errorf("RESULTS_TABLE must be a plain SQL identifier, got %q", c.ResultsTable)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
