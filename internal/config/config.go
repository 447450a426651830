// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from the
// environment via ApplyEnv.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`

	// Providers
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`

	// Model overrides per tier; empty entries use the defaults
	LiteModel     string `json:"lite_model,omitempty"`
	StandardModel string `json:"standard_model,omitempty"`
	AdvancedModel string `json:"advanced_model,omitempty"`

	// Loop tuning
	MaxAttempts       int     `json:"max_attempts,omitempty"`
	EarlyStopScore    int     `json:"early_stop_score,omitempty"`
	SignificanceRatio float64 `json:"significance_ratio,omitempty"`
	MinFinalLength    int     `json:"min_final_length,omitempty"`

	// Behavior
	Mode    string `json:"mode,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty string fields from environment variables. File
// values win over the environment so a config file stays authoritative.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.EarlyStopScore < 0 || c.EarlyStopScore > 200 {
		return fmt.Errorf("config error: 'early_stop_score' must be between 0 and 200")
	}
	if c.SignificanceRatio < 0 || c.SignificanceRatio > 1 {
		return fmt.Errorf("config error: 'significance_ratio' must be between 0.0 and 1.0")
	}
	if c.MinFinalLength < 0 {
		return fmt.Errorf("config error: 'min_final_length' must be non-negative")
	}
	switch c.Mode {
	case "", "basic", "personalized", "aggressive", "conservative", "balanced":
	default:
		return fmt.Errorf("config error: unknown mode %q", c.Mode)
	}
	if c.GeminiAPIKey == "" && c.AnthropicAPIKey == "" {
		return fmt.Errorf("config error: at least one of 'gemini_api_key' or 'anthropic_api_key' is required")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. CLI flag values merge through this before validation.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.AnthropicAPIKey == "" {
		result.AnthropicAPIKey = defaults.AnthropicAPIKey
	}
	if result.LiteModel == "" {
		result.LiteModel = defaults.LiteModel
	}
	if result.StandardModel == "" {
		result.StandardModel = defaults.StandardModel
	}
	if result.AdvancedModel == "" {
		result.AdvancedModel = defaults.AdvancedModel
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.EarlyStopScore == 0 {
		result.EarlyStopScore = defaults.EarlyStopScore
	}
	if result.SignificanceRatio == 0 {
		result.SignificanceRatio = defaults.SignificanceRatio
	}
	if result.MinFinalLength == 0 {
		result.MinFinalLength = defaults.MinFinalLength
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}

	// Bool fields: cannot distinguish unset from false, so CLI flags win

	return result
}
