package routing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Rule is a single step in the resolution chain. Detect returns a nil
// decision when the rule does not apply to the message; the chain then moves
// on to the next rule. A non-nil error aborts resolution entirely.
type Rule interface {
	Name() string
	Detect(ctx context.Context, message string) (*Decision, error)
}

// Chain resolves messages through an ordered list of rules.
type Chain struct {
	rules  []Rule
	logger *zap.Logger
}

// NewChain creates a resolution chain. Rule order is precedence order.
func NewChain(rules []Rule, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{rules: rules, logger: logger}
}

// Resolve runs the rules in order and returns the first decision produced.
// Every returned decision has passed Validate.
func (c *Chain) Resolve(ctx context.Context, message string) (*Decision, error) {
	for _, rule := range c.rules {
		decision, err := rule.Detect(ctx, message)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Name(), err)
		}

		if decision == nil {
			c.logger.Debug("routing rule passed", zap.String("rule", rule.Name()))
			continue
		}

		if err := decision.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Name(), err)
		}

		c.logger.Info("routing decision resolved",
			zap.String("rule", rule.Name()),
			zap.String("intent", decision.Intent),
			zap.Bool("job_match", decision.RunJobMatch),
			zap.Bool("company_research", decision.RunCompanyResearch),
			zap.Bool("section_enhance", decision.RunSectionEnhance),
			zap.Bool("translate", decision.Translate),
			zap.String("target_language", decision.TargetLanguage),
		)

		return decision, nil
	}

	return nil, fmt.Errorf("no routing rule matched the message")
}
