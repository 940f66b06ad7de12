package factory

import (
	"fmt"
	"time"

	"flex-designer-be/pkg/llm"
	"flex-designer-be/pkg/llm/gemini"
	"flex-designer-be/pkg/llm/ollama"
)

type Config struct {
	Provider string // "gemini" or "ollama"
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	switch cfg.Provider {
	case "gemini", "":
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		return gemini.NewGeminiProvider(cfg.APIKey, model, cfg.Timeout), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
