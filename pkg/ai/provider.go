// Package ai provides the LLM provider used to write PR summaries.
//
// Providers take a list of messages and return the model's text. The
// summarizer treats that text as opaque and does its own parsing, so
// providers never interpret the content.
package ai

import (
	"context"
	"log/slog"
	"os"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// Message represents a conversation message.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Response from AI provider.
type Response struct {
	Content      string
	StopReason   string
	InputTokens  int
	OutputTokens int
}

// Provider interface for AI operations.
type Provider interface {
	// IsAvailable checks if provider is available and configured.
	IsAvailable() bool

	// Chat performs a single-turn chat completion.
	Chat(ctx context.Context, messages []Message) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// ProviderGemini is the only supported provider.
const ProviderGemini = "gemini"

// apiKeyEnvVars are checked in order before the configured key.
var apiKeyEnvVars = []string{"GOOGLE_API_KEY", "GOOGLE_GENAI_API_KEY", "GEMINI_API_KEY"}

// NewProvider creates an AI provider based on config.
// Environment variables take precedence over config file values for API keys.
func NewProvider(cfg *config.AIConfig, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, prserrors.NewConfigError("ai", "config is nil")
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		apiKey := resolveGeminiAPIKey(cfg.APIKey)
		if apiKey == "" {
			return nil, prserrors.NewConfigError("ai.api_key",
				"Gemini API key not set (set GOOGLE_API_KEY or ai.api_key in config)")
		}
		return NewGeminiProvider(GeminiOptions{
			APIKey:          apiKey,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.Timeout,
			JSONResponse:    true,
		}, logger), nil

	default:
		return nil, prserrors.NewConfigError("ai.provider",
			"unsupported AI provider: "+cfg.Provider+" (supported: gemini)")
	}
}

// resolveGeminiAPIKey returns the first API key found in the environment,
// otherwise the config value.
func resolveGeminiAPIKey(configKey string) string {
	for _, name := range apiKeyEnvVars {
		if envKey := os.Getenv(name); envKey != "" {
			return envKey
		}
	}
	return configKey
}
