package agents

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSectionEnhanceRun(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"edits": []any{
			map[string]any{
				"index":       float64(0),
				"before":      "Worked on backend systems",
				"after":       "Designed backend services handling 1M+ daily requests",
				"explanation": "Added metric",
			},
		},
	}}

	agent := NewSectionEnhance(stub, zap.NewNop())

	result, err := agent.Run(context.Background(), []string{"Worked on backend systems", "Built CI/CD pipelines"}, "Senior Backend Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(result.Edits))
	}
	edit := result.Edits[0]
	if edit.Index != 0 || edit.Before != "Worked on backend systems" {
		t.Fatalf("unexpected edit: %+v", edit)
	}

	if !strings.Contains(stub.lastPrompt, "Senior Backend Engineer") {
		t.Fatalf("expected role embedded in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "- Worked on backend systems\n- Built CI/CD pipelines") {
		t.Fatalf("expected bullets embedded in prompt, got %q", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "SECTION_ENHANCE:") {
		t.Fatalf("expected capability marker in prompt")
	}
}

func TestSectionEnhanceDefaultRole(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{"edits": []any{}}}
	agent := NewSectionEnhance(stub, zap.NewNop())

	if _, err := agent.Run(context.Background(), []string{"a bullet"}, "  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, DefaultRole) {
		t.Fatalf("expected default role in prompt")
	}
}

func TestSectionEnhanceParseFallback(t *testing.T) {
	stub := &stubLLM{parseRaw: "Here are some ideas in plain prose."}
	agent := NewSectionEnhance(stub, zap.NewNop())

	result, err := agent.Run(context.Background(), []string{"bullet"}, "role")
	if err != nil {
		t.Fatalf("parse failures must not escape the agent, got %v", err)
	}

	if len(result.Edits) != 0 {
		t.Fatalf("expected no structured edits, got %v", result.Edits)
	}
	if result.EditsText != stub.parseRaw {
		t.Fatalf("expected raw text preserved, got %q", result.EditsText)
	}
}

func TestSectionEnhanceIdempotentShape(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"edits": []any{
			map[string]any{"index": float64(1), "before": "b", "after": "a", "explanation": "e"},
		},
	}}
	agent := NewSectionEnhance(stub, zap.NewNop())

	first, err := agent.Run(context.Background(), []string{"x"}, "role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := agent.Run(context.Background(), []string{"x"}, "role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Edits) != len(second.Edits) {
		t.Fatalf("expected identical result shape across identical runs")
	}
	if (first.EditsText == "") != (second.EditsText == "") {
		t.Fatalf("expected identical fallback presence across identical runs")
	}
}
