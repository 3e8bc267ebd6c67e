// Package routing resolves a free-form user message into a routing decision:
// which capabilities to invoke and whether a translation pass is requested.
//
// Resolution runs an ordered rule chain. Deterministic manual rules sit in
// front of the LLM classifier, so a keyword match always wins over the
// model's opinion. The chain is a precedence list: add new override rules by
// inserting them before the classifier, not by layering conditionals in the
// orchestrator.
package routing

import (
	"fmt"
	"strings"
)

// Capability labels used as keys in structured orchestration output.
const (
	CapabilityJobMatch        = "job_match"
	CapabilityCompanyResearch = "company_research"
	CapabilitySectionEnhance  = "section_enhance"
)

// Decision describes how a single message should be handled. It is built
// fresh per message and never mutated after a rule returns it.
type Decision struct {
	Intent             string `json:"intent" mapstructure:"intent"`
	RunJobMatch        bool   `json:"run_job_match" mapstructure:"run_job_match"`
	RunCompanyResearch bool   `json:"run_company_research" mapstructure:"run_company_research"`
	RunSectionEnhance  bool   `json:"run_section_enhance" mapstructure:"run_section_enhance"`
	Translate          bool   `json:"translate" mapstructure:"translate"`
	TargetLanguage     string `json:"target_language,omitempty" mapstructure:"target_language"`
}

// Validate enforces the decision shape: a translation request must name its
// target language, and a stale target language is dropped when translation
// is off.
func (d *Decision) Validate() error {
	if d == nil {
		return fmt.Errorf("routing decision is nil")
	}

	if strings.TrimSpace(d.Intent) == "" {
		return fmt.Errorf("routing decision has no intent")
	}

	if d.Translate {
		if strings.TrimSpace(d.TargetLanguage) == "" {
			return fmt.Errorf("translation requested without a target language")
		}
		return nil
	}

	d.TargetLanguage = ""
	return nil
}

// PureTranslation reports whether translation is the only requested intent.
func (d *Decision) PureTranslation() bool {
	return d.Translate && !d.RunJobMatch && !d.RunCompanyResearch && !d.RunSectionEnhance
}

// Capabilities returns the labels of all requested capabilities in dispatch
// order: research first, then matching, then enhancement.
func (d *Decision) Capabilities() []string {
	caps := make([]string, 0, 3)
	if d.RunCompanyResearch {
		caps = append(caps, CapabilityCompanyResearch)
	}
	if d.RunJobMatch {
		caps = append(caps, CapabilityJobMatch)
	}
	if d.RunSectionEnhance {
		caps = append(caps, CapabilitySectionEnhance)
	}
	return caps
}
