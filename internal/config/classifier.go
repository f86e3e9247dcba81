package config

import (
	"fmt"
	"time"
)

// ClassifierConfig holds comment classification configuration.
type ClassifierConfig struct {
	// OpenAIAPIKey authenticates against the classification backend.
	// Empty disables classification; scoring falls back to flat XP.
	OpenAIAPIKey string
	// BaseURL overrides the classification API endpoint.
	BaseURL string
	// Model is the model name sent with each classification request.
	Model string
	// BatchSize caps how many comments one request classifies.
	BatchSize int
	// HTTPTimeout is the per-request timeout.
	HTTPTimeout time.Duration
}

// LoadClassifierConfigFromEnv loads classifier configuration from environment variables.
func LoadClassifierConfigFromEnv() ClassifierConfig {
	return ClassifierConfig{
		OpenAIAPIKey: GetEnv("OPENAI_API_KEY", ""),
		BaseURL:      GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:        GetEnv("OPENAI_MODEL", "gpt-4o-mini"),
		BatchSize:    GetEnvInt("CLASSIFIER_BATCH_SIZE", 20),
		HTTPTimeout:  GetEnvDuration("CLASSIFIER_HTTP_TIMEOUT", 60*time.Second),
	}
}

// Enabled reports whether a classification backend is configured.
func (c ClassifierConfig) Enabled() bool {
	return c.OpenAIAPIKey != ""
}

// Validate validates classifier configuration.
func (c ClassifierConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("BatchSize must be greater than 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTPTimeout must be greater than 0")
	}
	return nil
}
