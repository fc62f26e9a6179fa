// Package config provides application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"

	"github.com/PabloGalante/zap-agent/internal/domain"
)

type Config struct {
	Port string

	GeminiAPIKey string
	ModelName    string
	UseMockLLM   bool // true = run without a Gemini key, canned replies

	RequireAuth bool // require a bearer token on every request
	CORSOrigin  string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("ZAP_PORT", "8080"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		ModelName:    getEnv("ZAP_MODEL_NAME", "gemini-2.5-flash"),
		UseMockLLM:   getBoolEnv("ZAP_USE_MOCK_LLM", false),

		RequireAuth: getBoolEnv("ZAP_REQUIRE_AUTH", false),
		CORSOrigin:  getEnv("ZAP_CORS_ORIGIN", "*"),
	}

	// The missing-credential case is fatal at startup, never retried.
	if !cfg.UseMockLLM && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY must be set (or ZAP_USE_MOCK_LLM=1)", domain.ErrConfiguration)
	}

	return cfg, nil
}
