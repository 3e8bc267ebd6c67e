package llm

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestOfflineFixtures(t *testing.T) {
	t.Parallel()

	client := NewOffline(zap.NewNop())
	ctx := context.Background()

	route, err := client.GenerateJSON(ctx, "CLASSIFY: what should run", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route["run_job_match"] != true {
		t.Fatalf("expected routing fixture, got %v", route)
	}

	match, err := client.GenerateJSON(ctx, "JOB_MATCH: compare things", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match["score"] != 0.72 {
		t.Fatalf("expected job match fixture, got %v", match)
	}

	enhance, err := client.GenerateJSON(ctx, "SECTION_ENHANCE: improve bullets", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := enhance["edits"]; !ok {
		t.Fatalf("expected edits fixture, got %v", enhance)
	}

	research, err := client.GenerateJSON(ctx, "COMPANY_RESEARCH: research it", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if research["summary"] == "" {
		t.Fatalf("expected research fixture, got %v", research)
	}
}

func TestOfflineFixtureIsolation(t *testing.T) {
	t.Parallel()

	client := NewOffline(nil)
	ctx := context.Background()

	first, _ := client.GenerateJSON(ctx, "JOB_MATCH: x", 0)
	first["score"] = 0.0

	second, _ := client.GenerateJSON(ctx, "JOB_MATCH: x", 0)
	if second["score"] != 0.72 {
		t.Fatalf("fixture mutated by previous caller: %v", second)
	}
}

func TestOfflineTranslateEcho(t *testing.T) {
	t.Parallel()

	client := NewOffline(nil)

	source := "John Doe\n- Built pipelines\n- Wrote tests"
	prompt := "TRANSLATE: instructions here\n---\n" + source

	text, err := client.Generate(context.Background(), prompt, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != source {
		t.Fatalf("expected source echoed back, got %q", text)
	}
}

func TestOfflineDefaultReply(t *testing.T) {
	t.Parallel()

	client := NewOffline(nil)

	text, err := client.Generate(context.Background(), "You are an AI resume assistant.", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Fatalf("expected non-empty canned reply")
	}
}
