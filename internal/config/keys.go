// Package config provides API key management utilities.
package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no model API key configured")

// envKeys lists the environment variables consulted per provider, in order.
var envKeys = map[string][]string{
	ProviderAnthropic: {"NEXUS_MODEL_API_KEY", "ANTHROPIC_API_KEY"},
	ProviderOpenAI:    {"NEXUS_MODEL_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"},
	ProviderBedrock:   nil,
}

// GetAPIKey returns the model API key from the configuration.
// It checks in order: provider environment variables, config file.
// Bedrock authenticates through AWS credentials and never needs a key.
func GetAPIKey(cfg *Config) (string, error) {
	provider := ProviderAnthropic
	if cfg != nil && cfg.Model.Provider != "" {
		provider = cfg.Model.Provider
	}
	if provider == ProviderBedrock {
		return "", nil
	}

	for _, env := range envKeys[provider] {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	if cfg != nil && cfg.Model.APIKey != "" {
		key := os.ExpandEnv(cfg.Model.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	provider := ProviderAnthropic
	if cfg != nil && cfg.Model.Provider != "" {
		provider = cfg.Model.Provider
	}
	for _, env := range envKeys[provider] {
		if os.Getenv(env) != "" {
			return KeySourceEnv
		}
	}

	if cfg != nil && cfg.Model.APIKey != "" {
		key := os.ExpandEnv(cfg.Model.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}

	return KeySourceNone
}
