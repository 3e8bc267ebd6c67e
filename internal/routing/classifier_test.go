package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubLLM struct {
	obj        map[string]any
	text       string
	err        error
	lastPrompt string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ int) (string, error) {
	s.lastPrompt = prompt
	return s.text, s.err
}

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ int) (map[string]any, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	return s.obj, nil
}

func (s *stubLLM) Model() string { return "stub-model" }

func TestClassifierDetect(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"intent":               "optimize resume for a company",
		"run_job_match":        true,
		"run_company_research": true,
		"run_section_enhance":  true,
		"translate":            false,
		"target_language":      nil,
	}}

	classifier := NewClassifier(stub, zap.NewNop())

	decision, err := classifier.Detect(context.Background(), "Optimize my resume for Google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.RunJobMatch || !decision.RunCompanyResearch || !decision.RunSectionEnhance {
		t.Fatalf("expected all capability flags true, got %+v", decision)
	}
	if decision.Translate {
		t.Fatalf("expected translate false")
	}

	if !strings.Contains(stub.lastPrompt, "Optimize my resume for Google") {
		t.Fatalf("expected message embedded in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "CLASSIFY:") {
		t.Fatalf("expected classification marker in prompt")
	}
}

func TestClassifierDetectTranslation(t *testing.T) {
	stub := &stubLLM{obj: map[string]any{
		"intent":          "translate resume",
		"translate":       true,
		"target_language": "Spanish (Mexico)",
	}}

	decision, err := NewClassifier(stub, nil).Detect(context.Background(), "Translate this for the Mexican market")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !decision.Translate || decision.TargetLanguage != "Spanish (Mexico)" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestClassifierNonConformingOutput(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
	}{
		{
			name: "missing intent",
			obj:  map[string]any{"run_job_match": true},
		},
		{
			name: "wrong flag type",
			obj:  map[string]any{"intent": "x", "run_job_match": "definitely"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(&stubLLM{obj: tt.obj}, nil)
			_, err := classifier.Detect(context.Background(), "whatever")
			if !errors.Is(err, ErrRouteParse) {
				t.Fatalf("expected ErrRouteParse, got %v", err)
			}
		})
	}
}

func TestClassifierTransportError(t *testing.T) {
	transport := errors.New("connection refused")
	classifier := NewClassifier(&stubLLM{err: transport}, nil)

	_, err := classifier.Detect(context.Background(), "whatever")
	if !errors.Is(err, transport) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
	if errors.Is(err, ErrRouteParse) {
		t.Fatalf("transport failures must not be reported as parse failures")
	}
}
