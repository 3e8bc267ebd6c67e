// Package agents implements the capability agents: job-match,
// section-enhance and company-research. Every agent follows one contract:
// build a capability prompt with an explicit target JSON shape, ask the LLM
// gateway for strict JSON, decode into the typed result, and on a parse
// failure return a typed fallback that still satisfies the expected top-level
// keys. A parse failure never escapes an agent; transport failures do.
package agents

import (
	"errors"
	"strings"

	"github.com/careerflow/careerflow-agent/internal/llm"
	"github.com/mitchellh/mapstructure"
)

// renderPrompt substitutes {{KEY}} placeholders in an embedded template.
func renderPrompt(template string, vars map[string]string) string {
	prompt := template
	for key, value := range vars {
		prompt = strings.ReplaceAll(prompt, "{{"+key+"}}", value)
	}
	return prompt
}

// decodeResult conforms a loosely-typed model object to the agent's declared
// result shape. Weak typing tolerates the usual model quirks (numbers as
// strings, ints for floats) while keeping the shape itself strict.
func decodeResult(raw map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// parseFallback extracts the raw model text when err is a parse failure.
// The second return is false for transport errors, which must propagate.
func parseFallback(err error) (string, bool) {
	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Raw, true
	}
	return "", false
}
