package ai

import (
	"fmt"
	"time"

	"flavorpal-backend/entities"
)

const (
	DefaultBaseURL        = "https://api.openai.com"
	DefaultVisionModel    = "gpt-4.1-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultPromptVersion  = "2025-06"

	defaultVisionTimeout    = 60 * time.Second
	defaultEmbeddingTimeout = 30 * time.Second
)

// ModelConfig pins the model and prompt revision used by one capability.
type ModelConfig struct {
	Model         string
	PromptVersion string
}

type Config struct {
	APIKey  string
	BaseURL string

	Vision    ModelConfig
	Health    ModelConfig
	Embedding ModelConfig

	VisionTimeout    time.Duration
	EmbeddingTimeout time.Duration

	// EmbeddingDimensions is the vector width Embed accepts.
	EmbeddingDimensions int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Vision.Model == "" {
		c.Vision.Model = DefaultVisionModel
	}
	if c.Vision.PromptVersion == "" {
		c.Vision.PromptVersion = DefaultPromptVersion
	}
	if c.Health.Model == "" {
		c.Health.Model = DefaultVisionModel
	}
	if c.Health.PromptVersion == "" {
		c.Health.PromptVersion = DefaultPromptVersion
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.VisionTimeout <= 0 {
		c.VisionTimeout = defaultVisionTimeout
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = defaultEmbeddingTimeout
	}
	if c.EmbeddingDimensions <= 0 {
		c.EmbeddingDimensions = entities.EmbeddingDimensions
	}
	return c
}

func (c Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("openai api key is not configured")
	}
	if _, ok := prompts[c.Vision.PromptVersion]; !ok {
		return fmt.Errorf("unknown vision prompt version %q", c.Vision.PromptVersion)
	}
	if _, ok := prompts[c.Health.PromptVersion]; !ok {
		return fmt.Errorf("unknown health prompt version %q", c.Health.PromptVersion)
	}
	return nil
}
