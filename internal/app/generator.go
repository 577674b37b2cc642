package app

import (
	"context"
	"fmt"
	"strings"

	"archrecon/internal/config"
	"archrecon/internal/llm"
)

// initGenerator returns nil without error when gemini has no API key, so
// commands that never generate still work.
func initGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	var inner llm.Generator
	switch cfg.LLM.Provider {
	case config.ProviderFake:
		inner = llm.NewFakeGenerator(cfg.LLM.FakeResponse)
	case config.ProviderGemini:
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			log.Info("text generator disabled: GEMINI_API_KEY is not set")
			return nil, nil
		}
		g, err := llm.NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini: %w", err)
		}
		inner = g
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	return llm.Wrap(inner,
		llm.Logging(),
		llm.Retry(cfg.LLM.MaxRetries, 0),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	), nil
}
