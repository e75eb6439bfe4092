package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBDriver               string
	DBPath                 string
	NovelsRoot             string // Remote library root, URL or directory. Empty disables it.
	ManifestName           string
	RemoteFetchConcurrency int
	APIPort                string
	LLMBaseURL             string // Empty disables the reading assistant
	LLMModelName           string
	LLMAPIKey              string
	LLMRequestsPerMinute   int
	LogLevel               slog.Level
	LogFormat              string // "text" or "json"
}

// AssistantEnabled reports whether an LLM endpoint is configured.
func (c *Config) AssistantEnabled() bool {
	return c.LLMBaseURL != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try current directory, then walk up a few levels
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBDriver:     getEnv("DB_DRIVER", "sqlite3"),
		DBPath:       getEnv("DB_PATH", "./data/zenreader.db"),
		NovelsRoot:   getEnv("NOVELS_ROOT", ""),
		ManifestName: getEnv("MANIFEST_NAME", "manifest.json"),
		APIPort:      getEnv("API_PORT", "9000"),
		LLMBaseURL:   strings.TrimRight(getEnv("LLM_BASE_URL", ""), "/"),
		LLMModelName: getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	switch cfg.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite3 or sqlite, got %q", cfg.DBDriver)
	}

	if cfg.RemoteFetchConcurrency, err = getPositiveInt("REMOTE_FETCH_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.LLMRequestsPerMinute, err = getPositiveInt("LLM_REQUESTS_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}
