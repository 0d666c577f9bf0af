// Package config provides configuration for the currency chat agent.
package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the service configuration. Values come from defaults,
// overridden by .env and the process environment.
type Config struct {
	// Server
	HTTPPort int `env:"HTTP_PORT"`

	// LLM provider (OpenAI-compatible chat completions API)
	LLMBaseURL     string        `env:"LLM_BASE_URL"`
	LLMAPIKey      string        `env:"OPENAI_API_KEY"`
	LLMModel       string        `env:"LLM_MODEL"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT"`
	LLMMode        string        `env:"LLM_MODE"` // MOCK selects the canned client

	// NBU exchange-rate API
	NBUBaseURL string        `env:"NBU_BASE_URL"`
	NBUTimeout time.Duration `env:"NBU_TIMEOUT"`

	// Session store
	DatabaseDSN  string `env:"DATABASE_DSN"`  // :memory: keeps sessions process-local
	HistoryLimit int    `env:"HISTORY_LIMIT"` // max turns retained per session

	// Input guard
	PolicyFile     string `env:"POLICY_FILE"` // optional rego override for the blocking policy
	SanitizeMaxLen int    `env:"SANITIZE_MAX_LEN"`

	// Agent
	MaxToolIterations int `env:"MAX_TOOL_ITERATIONS"`

	// Logging
	DebugMode bool `env:"DEBUG_MODE"`
}

// Defaults returns the configuration with preset values. These are
// overridden by .env and environment variables.
func Defaults() *Config {
	return &Config{
		HTTPPort:          8000,
		LLMBaseURL:        "https://api.openai.com",
		LLMModel:          "gpt-4o-mini",
		LLMTemperature:    0.7,
		LLMTimeout:        90 * time.Second,
		NBUBaseURL:        "https://bank.gov.ua",
		NBUTimeout:        30 * time.Second,
		DatabaseDSN:       ":memory:",
		HistoryLimit:      20,
		SanitizeMaxLen:    1000,
		MaxToolIterations: 3,
	}
}

// Load loads the configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
