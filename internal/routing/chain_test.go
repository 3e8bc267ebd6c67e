package routing

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestChainManualOverrideWins(t *testing.T) {
	// The classifier would route this to section_enhance, but the manual
	// rule sits first in the chain and must win.
	stub := &stubLLM{obj: map[string]any{
		"intent":              "improve bullets",
		"run_section_enhance": true,
	}}

	chain := NewChain([]Rule{NewManualTranslate(), NewClassifier(stub, nil)}, zap.NewNop())

	decision, err := chain.Resolve(context.Background(), "Translate my bullet points to Hindi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Translate || decision.TargetLanguage != "Hindi" {
		t.Fatalf("expected manual translation decision, got %+v", decision)
	}
	if decision.RunSectionEnhance {
		t.Fatalf("manual override must force capability flags false")
	}
	if stub.lastPrompt != "" {
		t.Fatalf("classifier must not be consulted when the manual rule matches")
	}
}

func TestChainFallsThroughToClassifier(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"intent":              "improve bullets",
		"run_section_enhance": true,
	}}

	chain := NewChain([]Rule{NewManualTranslate(), NewClassifier(stub, nil)}, zap.NewNop())

	decision, err := chain.Resolve(context.Background(), "Rewrite my backend bullet points to show impact")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.RunSectionEnhance || decision.RunJobMatch || decision.RunCompanyResearch || decision.Translate {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestChainRejectsTranslationWithoutLanguage(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"intent":    "translate",
		"translate": true,
	}}

	chain := NewChain([]Rule{NewClassifier(stub, nil)}, zap.NewNop())

	_, err := chain.Resolve(context.Background(), "translate it")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "target language") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChainClearsStaleTargetLanguage(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"intent":          "job match",
		"run_job_match":   true,
		"translate":       false,
		"target_language": "French",
	}}

	chain := NewChain([]Rule{NewClassifier(stub, nil)}, zap.NewNop())

	decision, err := chain.Resolve(context.Background(), "match me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.TargetLanguage != "" {
		t.Fatalf("expected stale target language to be dropped, got %q", decision.TargetLanguage)
	}
}

func TestChainNoRuleMatched(t *testing.T) {
	chain := NewChain([]Rule{NewManualTranslate()}, zap.NewNop())

	if _, err := chain.Resolve(context.Background(), "hello there"); err == nil {
		t.Fatalf("expected error when no rule matches")
	}
}

func TestDecisionCapabilitiesOrder(t *testing.T) {
	t.Parallel()

	decision := &Decision{
		Intent:             "everything",
		RunJobMatch:        true,
		RunCompanyResearch: true,
		RunSectionEnhance:  true,
	}

	caps := decision.Capabilities()
	expected := []string{CapabilityCompanyResearch, CapabilityJobMatch, CapabilitySectionEnhance}
	if len(caps) != len(expected) {
		t.Fatalf("expected %d capabilities, got %d", len(expected), len(caps))
	}
	for i := range expected {
		if caps[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, caps)
		}
	}
}
