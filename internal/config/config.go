// Package config loads application configuration from environment
// variables, with optional .env file support.
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

// Config holds all configuration for the application. Chunking parameters
// here are defaults only; CLI flags and API request fields override them
// per invocation.
type Config struct {
	ChunkSize int
	Overlap   int

	// Metadata defaults applied to documents whose front-matter omits them.
	Jurisdiction string
	DocType      string
	DocVersion   string
	Owner        string

	DBPath string

	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingAPIKey  string
	VectorSize       int

	QdrantURL        string
	QdrantCollection string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// for optional fields. A .env file in the current directory is loaded
// first; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Jurisdiction:     getEnv("DEFAULT_JURISDICTION", "GB"),
		DocType:          getEnv("DEFAULT_DOC_TYPE", "guidance"),
		DocVersion:       getEnv("DEFAULT_DOC_VERSION", "1.0"),
		Owner:            getEnv("DEFAULT_OWNER", ""),
		DBPath:           getEnv("DB_PATH", "./data/ragbuilder.db"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", "dummy-key"),
		QdrantURL:        getEnv("QDRANT_URL", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "chunks"),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE_TOKENS", 280)
	if err != nil {
		return nil, err
	}
	cfg.Overlap, err = getEnvInt("CHUNK_OVERLAP_TOKENS", 40)
	if err != nil {
		return nil, err
	}
	cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 384)
	if err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	// Create the data directory up front so the manifest can open.
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
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

// getEnvInt parses an integer environment variable with a default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

// parseLogLevel maps a level name to a slog level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", level)
	}
}
