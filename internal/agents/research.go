package agents

import (
	"context"
	"strings"

	_ "embed"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"github.com/careerflow/careerflow-agent/internal/websearch"
	"go.uber.org/zap"
)

//go:embed research.md
var researchTemplate string

const (
	researchMaxTokens = 900

	noSnippetsBlock = "[No live web snippets available. Use your general knowledge and " +
		"reasonable assumptions based on the company name and context.]"
)

// CompanyResearchResult summarizes a target company for resume tailoring.
type CompanyResearchResult struct {
	Summary       string   `json:"summary" mapstructure:"summary"`
	Culture       []string `json:"culture" mapstructure:"culture"`
	Keywords      []string `json:"keywords" mapstructure:"keywords"`
	RoleAlignment string   `json:"role_alignment" mapstructure:"role_alignment"`
	RawSources    string   `json:"raw_sources,omitempty" mapstructure:"-"`
	RawText       string   `json:"raw_text,omitempty" mapstructure:"-"`
	Error         string   `json:"error,omitempty" mapstructure:"-"`
}

// CompanyResearch researches a company, optionally grounded with web search
// snippets.
type CompanyResearch struct {
	client   llm.Client
	searcher websearch.Searcher
	logger   *zap.Logger
}

// NewCompanyResearch creates the company-research agent. A nil searcher
// disables grounding.
func NewCompanyResearch(client llm.Client, searcher websearch.Searcher, log *zap.Logger) *CompanyResearch {
	if searcher == nil {
		searcher = websearch.Nop{}
	}
	return &CompanyResearch{
		client:   client,
		searcher: searcher,
		logger:   logger.WithFields(log, zap.String(logger.FieldCapability, "company_research")),
	}
}

// Run researches the company. An empty company name short-circuits with an
// explicit error marker and no LLM or search call. Search failures degrade to
// LLM-only reasoning. Parse failures wrap the raw model text.
func (a *CompanyResearch) Run(ctx context.Context, company, extraContext string) (*CompanyResearchResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return &CompanyResearchResult{
			Culture:  []string{},
			Keywords: []string{},
			Error:    "No company name provided.",
		}, nil
	}

	query := company + " company overview culture products hiring tech stack values"
	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		a.logger.Warn("web search failed, continuing without grounding", zap.Error(err))
		results = nil
	}
	snippets := websearch.Snippets(results, websearch.SnippetBudget)

	webBlock := snippets
	if webBlock == "" {
		webBlock = noSnippetsBlock
	}

	extra := extraContext
	if strings.TrimSpace(extra) == "" {
		extra = "N/A"
	}

	prompt := renderPrompt(researchTemplate, map[string]string{
		"COMPANY":      company,
		"CONTEXT":      extra,
		"WEB_SNIPPETS": webBlock,
	})

	raw, err := a.client.GenerateJSON(ctx, prompt, researchMaxTokens)
	if err != nil {
		if rawText, ok := parseFallback(err); ok {
			a.logger.Warn("company research output did not parse, using fallback")
			fallback := researchFallback(rawText)
			fallback.RawSources = snippets
			return fallback, nil
		}
		return nil, err
	}

	var result CompanyResearchResult
	if err := decodeResult(raw, &result); err != nil {
		a.logger.Warn("company research result shape mismatch, using fallback", zap.Error(err))
		fallback := researchFallback("")
		fallback.RawSources = snippets
		return fallback, nil
	}

	if result.Culture == nil {
		result.Culture = []string{}
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	result.RawSources = snippets

	a.logger.Debug("company research completed",
		zap.String("company", company),
		zap.Bool("grounded", snippets != ""),
		zap.Int("keywords", len(result.Keywords)),
	)

	return &result, nil
}

func researchFallback(rawText string) *CompanyResearchResult {
	return &CompanyResearchResult{
		Culture:  []string{},
		Keywords: []string{},
		RawText:  rawText,
	}
}
