// Package llm provides the gateway to hosted chat-completion models.
//
// All capability agents and the intent router speak to the model exclusively
// through the Client interface. Transport failures are fatal to the calling
// operation; structured-output parse failures are surfaced as *ParseError so
// callers can fall back without losing the raw model text.
package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderGroq    = "groq"
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"

	// DefaultMaxTokens bounds a completion when the caller does not care.
	DefaultMaxTokens = 400
)

// Client is the minimal surface the rest of the system needs from a model.
type Client interface {
	// Generate sends the prompt and returns the model's raw text.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	// GenerateJSON sends the prompt requesting strict JSON and returns the
	// parsed top-level object. A non-JSON response yields a *ParseError
	// carrying the raw text.
	GenerateJSON(ctx context.Context, prompt string, maxTokens int) (map[string]any, error)
	// Model reports the configured model identifier, for logging.
	Model() string
}

// Config selects and configures a provider.
type Config struct {
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Groq         *GroqConfig   `mapstructure:"groq"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

// GroqConfig configures the Groq OpenAI-compatible chat completions backend.
type GroqConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`

	// APIKey is resolved from the key file at startup, never read from the
	// config file directly.
	APIKey string `mapstructure:"-"`
}

// GeminiConfig configures the Google GenAI backend.
type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`

	APIKey string `mapstructure:"-"`
}

// New builds a Client for the configured provider. When the selected provider
// has no credential the offline client is returned instead, so the rest of
// the system stays exercisable without live access.
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", ProviderGroq:
		groqCfg := cfg.Groq
		if groqCfg == nil {
			groqCfg = &GroqConfig{}
		}
		if strings.TrimSpace(groqCfg.APIKey) == "" {
			logger.Warn("no groq api key configured, running in offline mode")
			return NewOffline(logger), nil
		}
		return NewGroq(groqCfg, logger), nil
	case ProviderGemini:
		geminiCfg := cfg.Gemini
		if geminiCfg == nil || strings.TrimSpace(geminiCfg.APIKey) == "" {
			logger.Warn("no gemini api key configured, running in offline mode")
			return NewOffline(logger), nil
		}
		return NewGemini(ctx, geminiCfg, logger)
	case ProviderOffline:
		return NewOffline(logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// ParseError reports that a model responded with text that could not be
// conformed to the requested JSON object. Raw holds the unparsed response for
// diagnostics and fallbacks.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
