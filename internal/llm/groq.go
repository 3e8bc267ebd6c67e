package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/careerflow/careerflow-agent/internal/logger"
	"go.uber.org/zap"
)

const (
	groqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama-3.1-8b-instant"

	// jsonSystemPrompt forces strict JSON so downstream decoding is cheap.
	jsonSystemPrompt = "You are a JSON responder. ALWAYS respond with valid JSON and nothing else.\n" +
		"If asked to return an array or object, return strictly valid JSON with double quotes.\n" +
		"If you cannot determine correct values, use empty arrays or empty strings, but still return valid JSON.\n" +
		"Do not add any commentary, explanation, or markdown.\n"

	defaultMaxLogLength = 200
)

// GroqClient talks to the Groq OpenAI-compatible chat completions API.
type GroqClient struct {
	apiKey    string
	model     string
	logger    *zap.Logger
	maxLogLen int

	HTTPClient *http.Client
	APIURL     string
}

// NewGroq creates a GroqClient. Completions run at temperature zero so that
// routing and structured extraction stay deterministic.
func NewGroq(cfg *GroqConfig, log *zap.Logger) *GroqClient {
	model := cfg.Model
	if model == "" {
		model = defaultGroqModel
	}

	return &GroqClient{
		apiKey: cfg.APIKey,
		model:  model,
		logger: logger.WithProviderFields(log, ProviderGroq, model),
		APIURL: groqAPIURL,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxLogLen: defaultMaxLogLength,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message and returns the raw text.
func (c *GroqClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.complete(ctx, []chatMessage{{Role: "user", Content: prompt}}, maxTokens)
}

// GenerateJSON sends the prompt under a strict-JSON system message and parses
// the response as a top-level object.
func (c *GroqClient) GenerateJSON(ctx context.Context, prompt string, maxTokens int) (map[string]any, error) {
	messages := []chatMessage{
		{Role: "system", Content: jsonSystemPrompt},
		{Role: "user", Content: prompt},
	}

	raw, err := c.complete(ctx, messages, maxTokens)
	if err != nil {
		return nil, err
	}

	return DecodeObject(raw)
}

func (c *GroqClient) Model() string {
	return c.model
}

func (c *GroqClient) complete(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("groq chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(messages[len(messages)-1].Content)),
		zap.String("prompt_preview", logger.TruncateForLog(messages[len(messages)-1].Content, c.maxLogLen)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read groq response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode groq response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("groq request failed: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("groq request failed with status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("groq response contains no choices")
	}

	content := parsed.Choices[0].Message.Content

	c.logger.Debug("groq chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(content)),
		zap.String("response_preview", logger.TruncateForLog(content, c.maxLogLen)),
	)

	return content, nil
}
