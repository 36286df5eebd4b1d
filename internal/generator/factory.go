package generator

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/config"
)

// NewFromConfig builds a Service for the configured provider. A provider that
// cannot be constructed (e.g. missing key) is logged and replaced by the
// fallback-only service so the automation keeps running.
func NewFromConfig(cfg config.AIConfig) *Service {
	backend, err := newBackend(cfg)
	if err != nil {
		logrus.Warnf("Response generation backend unavailable, using canned replies only: %v", err)
		backend = nil
	}
	if backend != nil {
		logrus.Infof("Using %s for response generation (model: %s)", backend.Name(), cfg.Model)
	}
	return NewService(backend, WithTimeout(cfg.RequestTimeout))
}

func newBackend(cfg config.AIConfig) (Backend, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderAnthropic:
		return NewAnthropicBackend(AnthropicConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	case config.ProviderOpenAI, "":
		return NewOpenAIBackend(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
