package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"go.uber.org/zap"
)

// stubLLM implements llm.Client for agent tests. When parseRaw is set,
// GenerateJSON fails with a *llm.ParseError carrying it.
type stubLLM struct {
	obj        map[string]any
	err        error
	parseRaw   string
	lastPrompt string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ int) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.parseRaw, nil
}

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ int) (map[string]any, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	if s.parseRaw != "" {
		return nil, &llm.ParseError{Raw: s.parseRaw, Err: errors.New("invalid character")}
	}
	return s.obj, nil
}

func (s *stubLLM) Model() string { return "stub-model" }

func TestJobMatchRun(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"score":       0.72,
		"gaps":        []any{"cloud architecture"},
		"suggestions": []any{"Add metrics"},
	}}

	agent := NewJobMatch(stub, zap.NewNop())

	result, err := agent.Run(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 0.72 {
		t.Fatalf("unexpected score: %v", result.Score)
	}
	if len(result.Gaps) != 1 || result.Gaps[0] != "cloud architecture" {
		t.Fatalf("unexpected gaps: %v", result.Gaps)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("unexpected suggestions: %v", result.Suggestions)
	}

	if !strings.Contains(stub.lastPrompt, "resume text") || !strings.Contains(stub.lastPrompt, "job description") {
		t.Fatalf("expected inputs embedded in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "JOB_MATCH:") {
		t.Fatalf("expected capability marker in prompt")
	}
}

func TestJobMatchParseFallback(t *testing.T) {
	stub := &stubLLM{parseRaw: "I think this is a decent match overall."}
	agent := NewJobMatch(stub, zap.NewNop())

	result, err := agent.Run(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("parse failures must not escape the agent, got %v", err)
	}

	if result.Score != 0.0 {
		t.Fatalf("expected zero score, got %v", result.Score)
	}
	if len(result.Gaps) != 0 {
		t.Fatalf("expected empty gaps, got %v", result.Gaps)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != stub.parseRaw {
		t.Fatalf("expected raw text as fallback suggestion, got %v", result.Suggestions)
	}
}

func TestJobMatchTransportError(t *testing.T) {
	transport := errors.New("upstream unavailable")
	agent := NewJobMatch(&stubLLM{err: transport}, zap.NewNop())

	_, err := agent.Run(context.Background(), "resume", "jd")
	if !errors.Is(err, transport) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
}

func TestJobMatchWeakTyping(t *testing.T) {
	// Models occasionally return numbers as strings; the decoder tolerates it.
	stub := &stubLLM{obj: map[string]any{
		"score":       "0.5",
		"gaps":        []any{},
		"suggestions": []any{},
	}}

	result, err := NewJobMatch(stub, zap.NewNop()).Run(context.Background(), "r", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 0.5 {
		t.Fatalf("expected coerced score 0.5, got %v", result.Score)
	}
}
