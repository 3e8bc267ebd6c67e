package routing

import (
	"context"
	"strings"
)

// languageAlias maps a token found in user text to the canonical language
// name the translation prompt will use.
type languageAlias struct {
	token     string
	canonical string
}

// languageAliases is scanned in declaration order and the first contained
// token wins. Compound names sit before their general forms ("mexican
// spanish" before "spanish") so the most specific alias takes priority.
var languageAliases = []languageAlias{
	{"mexican spanish", "Mexican Spanish"},
	{"spanish", "Spanish"},
	{"french", "French"},
	{"german", "German"},
	{"hindi", "Hindi"},
	{"urdu", "Urdu"},
	{"japanese", "Japanese"},
	{"japan", "Japanese"},
	{"korean", "Korean"},
	{"korea", "Korean"},
}

// ManualTranslate is the deterministic safety net in front of the LLM
// classifier. Keyword scanning detects low-resource-language requests more
// reliably than the model does, so a match here takes strict precedence.
type ManualTranslate struct{}

// NewManualTranslate creates the manual translation override rule.
func NewManualTranslate() *ManualTranslate {
	return &ManualTranslate{}
}

func (r *ManualTranslate) Name() string { return "manual_translate" }

// Detect returns a pure-translation decision when the message contains the
// literal token "translate" together with a known language alias. All
// capability flags are forced false: a manual match is treated as pure
// translation intent.
func (r *ManualTranslate) Detect(_ context.Context, message string) (*Decision, error) {
	msg := strings.ToLower(message)
	if !strings.Contains(msg, "translate") {
		return nil, nil
	}

	for _, alias := range languageAliases {
		if !strings.Contains(msg, alias.token) {
			continue
		}

		return &Decision{
			Intent:         "translate",
			Translate:      true,
			TargetLanguage: alias.canonical,
		}, nil
	}

	return nil, nil
}
