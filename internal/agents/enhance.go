package agents

import (
	"context"
	"strings"

	_ "embed"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"go.uber.org/zap"
)

//go:embed enhance.md
var enhanceTemplate string

const (
	enhanceMaxTokens = 800

	// DefaultRole is used when the caller does not name a target role.
	DefaultRole = "Software Engineer"
)

// Edit is one proposed bullet rewrite.
type Edit struct {
	Index       int    `json:"index" mapstructure:"index"`
	Before      string `json:"before" mapstructure:"before"`
	After       string `json:"after" mapstructure:"after"`
	Explanation string `json:"explanation" mapstructure:"explanation"`
}

// SectionEnhanceResult holds the proposed edits, or the raw model text when
// the response did not parse.
type SectionEnhanceResult struct {
	Edits     []Edit `json:"edits,omitempty" mapstructure:"edits"`
	EditsText string `json:"edits_text,omitempty" mapstructure:"-"`
}

// SectionEnhance rewrites resume bullets for a target role.
type SectionEnhance struct {
	client llm.Client
	logger *zap.Logger
}

// NewSectionEnhance creates the section-enhance agent.
func NewSectionEnhance(client llm.Client, log *zap.Logger) *SectionEnhance {
	return &SectionEnhance{
		client: client,
		logger: logger.WithFields(log, zap.String(logger.FieldCapability, "section_enhance")),
	}
}

// Run proposes improved bullets. On parse failure the raw model text is
// wrapped under edits_text instead of raising.
func (a *SectionEnhance) Run(ctx context.Context, bullets []string, role string) (*SectionEnhanceResult, error) {
	if strings.TrimSpace(role) == "" {
		role = DefaultRole
	}

	joined := make([]string, 0, len(bullets))
	for _, b := range bullets {
		joined = append(joined, "- "+b)
	}

	prompt := renderPrompt(enhanceTemplate, map[string]string{
		"ROLE":    role,
		"BULLETS": strings.Join(joined, "\n"),
	})

	raw, err := a.client.GenerateJSON(ctx, prompt, enhanceMaxTokens)
	if err != nil {
		if rawText, ok := parseFallback(err); ok {
			a.logger.Warn("section enhance output did not parse, using fallback")
			return &SectionEnhanceResult{EditsText: rawText}, nil
		}
		return nil, err
	}

	var result SectionEnhanceResult
	if err := decodeResult(raw, &result); err != nil {
		a.logger.Warn("section enhance result shape mismatch, using fallback", zap.Error(err))
		return &SectionEnhanceResult{EditsText: ""}, nil
	}

	a.logger.Debug("section enhance completed", zap.Int("edits", len(result.Edits)))

	return &result, nil
}
