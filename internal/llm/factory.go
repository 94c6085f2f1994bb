package llm

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/config"
)

// NewFromConfig builds the transport selected by cfg.Model.Provider.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (Transport, error) {
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	m := cfg.Model
	switch m.Provider {
	case config.ProviderAnthropic, config.ProviderBedrock:
		return NewAnthropicClient(AnthropicConfig{
			Model:         anthropic.Model(m.Name),
			APIKey:        key,
			BaseURL:       m.Endpoint,
			Temperature:   m.Temperature,
			MaxTokens:     m.MaxTokens,
			Timeout:       m.Timeout,
			UseAWSBedrock: m.Provider == config.ProviderBedrock,
			AWSRegion:     m.AWSRegion,
			AWSProfile:    m.AWSProfile,
			Logger:        logger,
		})
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			Endpoint:    m.Endpoint,
			APIKey:      key,
			Model:       m.Name,
			Temperature: m.Temperature,
			MaxTokens:   m.MaxTokens,
			Timeout:     m.Timeout,
			Logger:      logger,
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q", m.Provider)
	}
}
