package agents

import (
	"context"

	_ "embed"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"go.uber.org/zap"
)

//go:embed jobmatch.md
var jobMatchTemplate string

const jobMatchMaxTokens = 400

// JobMatchResult scores a resume against a job description.
type JobMatchResult struct {
	Score       float64  `json:"score" mapstructure:"score"`
	Gaps        []string `json:"gaps" mapstructure:"gaps"`
	Suggestions []string `json:"suggestions" mapstructure:"suggestions"`
}

// JobMatch compares resume text to a job description.
type JobMatch struct {
	client llm.Client
	logger *zap.Logger
}

// NewJobMatch creates the job-match agent.
func NewJobMatch(client llm.Client, log *zap.Logger) *JobMatch {
	return &JobMatch{
		client: client,
		logger: logger.WithFields(log, zap.String(logger.FieldCapability, "job_match")),
	}
}

// Run scores the match. A model response that fails to parse produces the
// fallback result (zero score, raw text as the sole suggestion); a transport
// failure is returned as an error.
func (a *JobMatch) Run(ctx context.Context, resumeText, jobDescription string) (*JobMatchResult, error) {
	prompt := renderPrompt(jobMatchTemplate, map[string]string{
		"RESUME":          resumeText,
		"JOB_DESCRIPTION": jobDescription,
	})

	raw, err := a.client.GenerateJSON(ctx, prompt, jobMatchMaxTokens)
	if err != nil {
		if rawText, ok := parseFallback(err); ok {
			a.logger.Warn("job match output did not parse, using fallback")
			return jobMatchFallback(rawText), nil
		}
		return nil, err
	}

	var result JobMatchResult
	if err := decodeResult(raw, &result); err != nil {
		a.logger.Warn("job match result shape mismatch, using fallback", zap.Error(err))
		return jobMatchFallback(""), nil
	}

	if result.Gaps == nil {
		result.Gaps = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}

	a.logger.Debug("job match completed",
		zap.Float64("score", result.Score),
		zap.Int("gaps", len(result.Gaps)),
		zap.Int("suggestions", len(result.Suggestions)),
	)

	return &result, nil
}

func jobMatchFallback(rawText string) *JobMatchResult {
	suggestions := []string{}
	if rawText != "" {
		suggestions = []string{rawText}
	}
	return &JobMatchResult{
		Score:       0.0,
		Gaps:        []string{},
		Suggestions: suggestions,
	}
}
