package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/llm"
	"ship-framework-be/pkg/llm/fake"
	"ship-framework-be/pkg/llm/gemini"
	"ship-framework-be/pkg/llm/ollama"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLMProvider builds the configured backend wrapped with retries and
// logging. A gemini backend without a usable key is returned as an
// llm.Unavailable provider so the service still starts and reports the
// credential problem on every call.
func NewLLMProvider(ctx context.Context, cfg Config, log logger.ILogger) (llm.LLMProvider, error) {
	var inner llm.LLMProvider
	switch cfg.Provider {
	case "", "gemini":
		p, err := gemini.New(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			var perr *llm.Error
			if !errors.As(err, &perr) {
				return nil, err
			}
			inner = llm.Unavailable{Err: perr}
		} else {
			inner = p
		}
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		inner = ollama.NewOllamaProvider(baseURL, cfg.Model)
	case "fake":
		inner = fake.New("Respuesta ", "de ", "prueba.")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	return llm.Wrap(inner, llm.WithLogging(log), llm.Retry(3, 500*time.Millisecond)), nil
}
