package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

//go:embed classify.md
var classifyTemplate string

const classifyMaxTokens = 200

// ErrRouteParse reports that the classifier's output could not be conformed
// to the decision shape. There is no safe default for "what should run", so
// this is a hard failure surfaced to the caller.
var ErrRouteParse = errors.New("classifier output does not conform to the routing decision shape")

// Classifier asks the LLM to classify the message against the capability
// vocabulary. It is the terminal rule in the chain: it either produces a
// decision or fails.
type Classifier struct {
	client llm.Client
	logger *zap.Logger
}

// NewClassifier creates the LLM-backed classification rule.
func NewClassifier(client llm.Client, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{client: client, logger: logger}
}

func (c *Classifier) Name() string { return "llm_classifier" }

// Detect classifies the message. Routing is phrased as structured extraction
// rather than single-label classification because requests are frequently
// compound and the orchestrator needs independent flags.
func (c *Classifier) Detect(ctx context.Context, message string) (*Decision, error) {
	prompt := strings.ReplaceAll(classifyTemplate, "{{MESSAGE}}", message)

	raw, err := c.client.GenerateJSON(ctx, prompt, classifyMaxTokens)
	if err != nil {
		var parseErr *llm.ParseError
		if errors.As(err, &parseErr) {
			c.logger.Warn("classifier returned unparseable output",
				zap.String("raw", parseErr.Raw),
			)
			return nil, fmt.Errorf("%w: %v", ErrRouteParse, err)
		}
		return nil, err
	}

	decision, err := decodeDecision(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteParse, err)
	}

	return decision, nil
}

// decodeDecision strictly conforms the classifier's JSON object to the
// Decision shape. Types must match exactly; an unknown or missing intent is
// rejected rather than defaulted.
func decodeDecision(raw map[string]any) (*Decision, error) {
	// JSON null means "no target language" rather than a typed value.
	if v, ok := raw["target_language"]; ok && v == nil {
		delete(raw, "target_language")
	}

	var decision Decision
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &decision,
		ErrorUnused: false,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	if _, ok := raw["intent"]; !ok {
		return nil, fmt.Errorf("missing intent field")
	}

	return &decision, nil
}
