package llm

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewFallsBackToOffline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "groq without key", cfg: &Config{Provider: ProviderGroq}},
		{name: "gemini without key", cfg: &Config{Provider: ProviderGemini, Gemini: &GeminiConfig{}}},
		{name: "explicit offline", cfg: &Config{Provider: ProviderOffline}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := New(context.Background(), tt.cfg, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := client.(*OfflineClient); !ok {
				t.Fatalf("expected offline client, got %T", client)
			}
		})
	}
}

func TestNewGroqProvider(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &Config{
		Provider: ProviderGroq,
		Groq:     &GroqConfig{APIKey: "sk-test", Model: "m"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*GroqClient); !ok {
		t.Fatalf("expected groq client, got %T", client)
	}
	if client.Model() != "m" {
		t.Fatalf("unexpected model: %q", client.Model())
	}
}

func TestNewUnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &Config{Provider: "anthropic"}, zap.NewNop())
	if err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
