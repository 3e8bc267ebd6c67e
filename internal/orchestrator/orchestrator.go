// Package orchestrator routes a user message, fans out to the capability
// agents it selects, and synthesizes a single reply.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careerflow/careerflow-agent/internal/agents"
	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/careerflow/careerflow-agent/internal/logger"
	"github.com/careerflow/careerflow-agent/internal/routing"
	"github.com/careerflow/careerflow-agent/internal/store"
	"github.com/careerflow/careerflow-agent/internal/telemetry"
)

//go:embed synthesis.md
var synthesisTemplate string

//go:embed translate.md
var translateTemplate string

const (
	synthesisMaxTokens   = 800
	translationMaxTokens = 1800

	maxEnhanceBullets = 5
)

// Request carries one user message plus the optional structured inputs the
// capabilities draw on.
type Request struct {
	Message         string `json:"message"`
	ResumeVersionID string `json:"resume_version_id,omitempty"`
	Role            string `json:"role,omitempty"`
	Company         string `json:"company,omitempty"`
	JobDescription  string `json:"job_description,omitempty"`
}

// Result is the orchestrated response for one message.
type Result struct {
	Reply        string            `json:"reply"`
	AgentsCalled []string          `json:"agents_called"`
	Structured   map[string]any    `json:"structured,omitempty"`
	Routing      *routing.Decision `json:"routing"`
}

// Orchestrator owns the full message pipeline: routing, capability dispatch,
// synthesis, and the optional translation pass.
type Orchestrator struct {
	router    *routing.Chain
	client    llm.Client
	research  *agents.CompanyResearch
	jobMatch  *agents.JobMatch
	enhance   *agents.SectionEnhance
	versions  store.VersionStore
	telemetry telemetry.Recorder
	logger    *zap.Logger
}

// Options configures optional collaborators. Nil fields fall back to inert
// implementations.
type Options struct {
	Versions  store.VersionStore
	Telemetry telemetry.Recorder
}

// New wires the orchestrator from its collaborators.
func New(router *routing.Chain, client llm.Client, research *agents.CompanyResearch, jobMatch *agents.JobMatch, enhance *agents.SectionEnhance, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.Nop{}
	}
	return &Orchestrator{
		router:    router,
		client:    client,
		research:  research,
		jobMatch:  jobMatch,
		enhance:   enhance,
		versions:  opts.Versions,
		telemetry: opts.Telemetry,
		logger:    log,
	}
}

// HandleMessage runs the full pipeline for one message. Routing and LLM
// transport failures are returned; capability-level degradations surface
// inside the structured results instead.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) (*Result, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is empty")
	}

	o.recordEvent(telemetry.KindUserMessage, "user", message, nil)

	resumeText := o.resolveResume(ctx, req.ResumeVersionID)

	decision, err := o.router.Resolve(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("routing failed: %w", err)
	}
	o.recordEvent(telemetry.KindRouting, "", decision.Intent, map[string]any{
		"capabilities":    decision.Capabilities(),
		"translate":       decision.Translate,
		"target_language": decision.TargetLanguage,
	})

	result := &Result{
		AgentsCalled: []string{},
		Structured:   map[string]any{},
		Routing:      decision,
	}

	if err := o.dispatch(ctx, req, message, resumeText, decision, result); err != nil {
		return nil, err
	}

	reply, err := o.synthesize(ctx, req, message, decision, result.Structured)
	if err != nil {
		return nil, err
	}
	result.Reply = reply

	if decision.Translate {
		source := result.Reply
		if decision.PureTranslation() && resumeText != "" {
			source = resumeText
		}
		translated, err := o.translate(ctx, source, decision.TargetLanguage)
		if err != nil {
			return nil, err
		}
		result.Reply = translated
		result.AgentsCalled = append(result.AgentsCalled, "translation:"+decision.TargetLanguage)
	}

	o.recordEvent(telemetry.KindAssistantReply, "assistant", result.Reply, map[string]any{
		"agents_called": result.AgentsCalled,
	})

	return result, nil
}

// resolveResume loads the referenced resume version. Any miss, a malformed
// ID, an unknown version, or no store at all, degrades to empty text.
func (o *Orchestrator) resolveResume(ctx context.Context, versionID string) string {
	if versionID == "" || o.versions == nil {
		return ""
	}

	id, err := uuid.Parse(versionID)
	if err != nil {
		o.logger.Warn("ignoring malformed resume version id", zap.String("resume_version_id", versionID))
		return ""
	}

	version, err := o.versions.GetVersion(ctx, id)
	if err != nil {
		o.logger.Warn("resume version lookup failed", zap.Error(err))
		return ""
	}
	if version == nil {
		o.logger.Warn("resume version not found", zap.String("resume_version_id", versionID))
		return ""
	}
	return version.Content
}

func (o *Orchestrator) dispatch(ctx context.Context, req Request, message, resumeText string, decision *routing.Decision, result *Result) error {
	for _, capability := range decision.Capabilities() {
		switch capability {
		case routing.CapabilityCompanyResearch:
			if strings.TrimSpace(req.Company) == "" {
				o.logger.Warn("skipping company research, no company name provided")
				continue
			}
			research, err := o.research.Run(ctx, req.Company, message)
			if err != nil {
				return fmt.Errorf("company research failed: %w", err)
			}
			result.Structured[capability] = research
			result.AgentsCalled = append(result.AgentsCalled, capability)
			o.recordAgentResult(capability, research)

		case routing.CapabilityJobMatch:
			if resumeText == "" {
				o.logger.Warn("skipping job match, no resume text available")
				continue
			}
			jobDescription := strings.TrimSpace(req.JobDescription)
			if jobDescription == "" {
				jobDescription = message
			}
			match, err := o.jobMatch.Run(ctx, resumeText, jobDescription)
			if err != nil {
				return fmt.Errorf("job match failed: %w", err)
			}
			result.Structured[capability] = match
			result.AgentsCalled = append(result.AgentsCalled, capability)
			o.recordAgentResult(capability, match)

		case routing.CapabilitySectionEnhance:
			if resumeText == "" {
				o.logger.Warn("skipping section enhance, no resume text available")
				continue
			}
			enhanced, err := o.enhance.Run(ctx, leadingBullets(resumeText, maxEnhanceBullets), req.Role)
			if err != nil {
				return fmt.Errorf("section enhance failed: %w", err)
			}
			result.Structured[capability] = enhanced
			result.AgentsCalled = append(result.AgentsCalled, capability)
			o.recordAgentResult(capability, enhanced)
		}
	}
	return nil
}

func (o *Orchestrator) synthesize(ctx context.Context, req Request, message string, decision *routing.Decision, structured map[string]any) (string, error) {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "N/A"
	}
	company := strings.TrimSpace(req.Company)
	if company == "" {
		company = "N/A"
	}

	prompt := renderTemplate(synthesisTemplate, map[string]string{
		"MESSAGE": message,
		"ROLE":    role,
		"COMPANY": company,
		"ROUTING": jsonBlock(decision),
		"RESULTS": jsonBlock(structured),
	})

	reply, err := o.client.Generate(ctx, prompt, synthesisMaxTokens)
	if err != nil {
		return "", fmt.Errorf("reply synthesis failed: %w", err)
	}

	o.logger.Debug("synthesized reply",
		zap.String("preview", logger.TruncateForLog(reply, 120)),
	)
	return strings.TrimSpace(reply), nil
}

func (o *Orchestrator) translate(ctx context.Context, content, targetLanguage string) (string, error) {
	prompt := renderTemplate(translateTemplate, map[string]string{
		"TARGET_LANGUAGE": targetLanguage,
		"CONTENT":         content,
	})

	translated, err := o.client.Generate(ctx, prompt, translationMaxTokens)
	if err != nil {
		return "", fmt.Errorf("translation to %s failed: %w", targetLanguage, err)
	}

	o.logger.Debug("translated reply",
		zap.String(logger.FieldLanguage, targetLanguage),
	)
	return strings.TrimSpace(translated), nil
}

func (o *Orchestrator) recordEvent(kind, role, content string, extra map[string]any) {
	event := telemetry.NewEvent(kind)
	event.Role = role
	event.Content = content
	event.Extra = extra
	o.telemetry.Record(event)
}

func (o *Orchestrator) recordAgentResult(capability string, payload any) {
	o.recordEvent(telemetry.KindAgentResult, "", capability, map[string]any{
		"capability": capability,
		"result":     payload,
	})
}

// leadingBullets takes the first non-empty lines of the resume as the
// section to enhance, stripping any existing bullet markers.
func leadingBullets(resumeText string, limit int) []string {
	bullets := make([]string, 0, limit)
	for _, line := range strings.Split(resumeText, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		if line == "" {
			continue
		}
		bullets = append(bullets, line)
		if len(bullets) == limit {
			break
		}
	}
	return bullets
}

func renderTemplate(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

func jsonBlock(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
