// Package websearch grounds company research with live snippets. It is a
// best-effort collaborator: a missing credential or any upstream failure
// degrades to an empty result set and the pipeline proceeds LLM-only.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tavilyAPIURL      = "https://api.tavily.com/search"
	defaultMaxResults = 5

	// SnippetBudget caps the characters of grounding text handed to the LLM.
	SnippetBudget = 6000
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Searcher is the interface the research agent consumes.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Config configures the Tavily search provider.
type Config struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	MaxResults int    `mapstructure:"max-results"`

	APIKey string `mapstructure:"-"`
}

// Tavily calls the Tavily web search API.
type Tavily struct {
	apiKey     string
	maxResults int
	logger     *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// NewTavily creates a Tavily searcher. An empty API key is allowed; Search
// then always returns an empty result set.
func NewTavily(cfg *Config, logger *zap.Logger) *Tavily {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Tavily{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxResults: maxResults,
		logger:     logger,
		APIURL:     tavilyAPIURL,
		HTTPClient: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs the query. Failures are logged and swallowed: the caller gets
// an empty slice and a nil error, never a propagated upstream failure.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	if t.apiKey == "" {
		return nil, nil
	}

	results, err := t.search(ctx, query)
	if err != nil {
		t.logger.Warn("web search failed, continuing without grounding",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, nil
	}

	return results, nil
}

func (t *Tavily) search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:        t.apiKey,
		Query:         query,
		MaxResults:    t.maxResults,
		IncludeAnswer: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		results = append(results, r)
	}

	t.logger.Debug("web search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Snippets flattens results into a grounding block, truncated to budget
// characters so the prompt stays within a safe size.
func Snippets(results []Result, budget int) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		snippet := fmt.Sprintf("%s\n%s\nSource: %s", r.Title, r.Content, r.URL)
		parts = append(parts, snippet)
	}

	joined := strings.Join(parts, "\n\n")
	if budget > 0 && len(joined) > budget {
		joined = joined[:budget]
	}
	return joined
}

// Nop is a searcher that finds nothing. Used when search is not configured.
type Nop struct{}

func (Nop) Search(context.Context, string) ([]Result, error) {
	return nil, nil
}
