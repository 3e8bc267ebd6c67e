package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/careerflow/careerflow-agent/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient adapts the Google GenAI SDK to the Client interface.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger.WithProviderFields(log, ProviderGemini, model),
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.generate(ctx, prompt, maxTokens, "")
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, maxTokens int) (map[string]any, error) {
	raw, err := c.generate(ctx, prompt, maxTokens, "application/json")
	if err != nil {
		return nil, err
	}
	return DecodeObject(raw)
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, maxTokens int, mimeType string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: int32(maxTokens),
	}
	if mimeType != "" {
		cfg.ResponseMIMEType = mimeType
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	c.logger.Debug("gemini generate content response",
		zap.Int("response_length", len(output)),
	)

	return output, nil
}
