// Package llm adapts text-generation services to a single call: prompt in,
// raw text out.
package llm

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/GustavoCaso/gastos/internal/config"
	"github.com/GustavoCaso/gastos/internal/logger"
)

const (
	DefaultOpenAIModel    = "gpt-4.1-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

var ErrMissingAPIKey = errors.New("api key not set")

type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	// JSONMode asks the service to constrain its reply to a JSON object.
	// Services may reject it, which surfaces as an error from Generate.
	JSONMode bool
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == config.ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

// New builds the generator for the configured provider.
func New(conf config.LLMConfig, logger *logger.Logger) (Generator, error) {
	if conf.APIKey == "" {
		return nil, errors.Wrapf(ErrMissingAPIKey, "provider %s", conf.Provider)
	}

	switch conf.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(conf.APIKey, conf.BaseURL, http.DefaultClient, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropic(conf.APIKey, conf.BaseURL, logger), nil
	default:
		return nil, errors.Errorf("unsupported llm provider %q", conf.Provider)
	}
}
