package ai

import (
	"context"
	"strings"

	"tribunal/internal/adapters/config"
	"tribunal/pkg/errors"
)

// ForModel selects a chat provider for the given model name. Models
// named gemini-* route to the Gemini API, everything else to OpenAI.
func ForModel(ctx context.Context, cfg config.AIConfig, model string) (ChatProvider, error) {
	limits := RateLimitConfig{
		Enabled:      cfg.RequestsPerMinute > 0,
		ReqPerMinute: float64(cfg.RequestsPerMinute),
		Burst:        cfg.Burst,
	}

	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		if cfg.GeminiKey == "" {
			return nil, errors.Wrap(errors.ErrMissingAPIKey,
				"Gemini API key must be set as GEMINI_API_KEY environment variable")
		}
		return NewGeminiProvider(ctx, cfg.GeminiKey, NewRateLimiter(ProviderNameGoogle, limits))
	}

	if cfg.OpenAIKey == "" {
		return nil, errors.Wrap(errors.ErrMissingAPIKey,
			"OpenAI API key must be set as OPENAI_API_KEY environment variable")
	}
	return NewOpenAIProvider(cfg.OpenAIKey, cfg.Timeout, NewRateLimiter(ProviderNameOpenAI, limits)), nil
}
