package store

import (
	"strings"
	"testing"

	"github.com/careerflow/careerflow-agent/internal/agents"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	content := "Built internal tools.\nMaintained CI pipelines."

	cases := []struct {
		name  string
		edits []agents.Edit
		want  string
	}{
		{
			name: "replaces first occurrence",
			edits: []agents.Edit{
				{Before: "Built internal tools.", After: "Built internal tools used by 40 engineers."},
			},
			want: "Built internal tools used by 40 engineers.\nMaintained CI pipelines.",
		},
		{
			name: "appends when before missing",
			edits: []agents.Edit{
				{Before: "Led migrations.", After: "Led zero-downtime database migrations."},
			},
			want: content + "\nLed zero-downtime database migrations.",
		},
		{
			name: "appends when before empty",
			edits: []agents.Edit{
				{After: "Mentored two junior engineers."},
			},
			want: content + "\nMentored two junior engineers.",
		},
		{
			name: "skips empty after",
			edits: []agents.Edit{
				{Before: "Maintained CI pipelines.", After: "   "},
			},
			want: content,
		},
		{
			name: "applies in order",
			edits: []agents.Edit{
				{Before: "Built internal tools.", After: "Shipped internal tools."},
				{Before: "Shipped internal tools.", After: "Shipped internal tooling platform."},
			},
			want: "Shipped internal tooling platform.\nMaintained CI pipelines.",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyEdits(content, tc.edits)
			if got != tc.want {
				t.Fatalf("unexpected content:\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestApplyEditsReplacesOnlyFirstMatch(t *testing.T) {
	t.Parallel()

	content := "Wrote tests.\nWrote tests."
	got := ApplyEdits(content, []agents.Edit{{Before: "Wrote tests.", After: "Wrote integration tests."}})

	if strings.Count(got, "Wrote integration tests.") != 1 {
		t.Fatalf("expected a single replacement, got %q", got)
	}
	if !strings.Contains(got, "Wrote tests.") {
		t.Fatalf("expected second occurrence untouched, got %q", got)
	}
}
