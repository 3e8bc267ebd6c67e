package llm

import (
	"encoding/json"
	"strings"
)

// CleanFences strips markdown code fences that models wrap around JSON even
// when told not to.
func CleanFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// DecodeObject parses the model response as a top-level JSON object. On a
// strict parse failure it retries on the substring between the first opening
// and last closing brace. If that also fails the raw text is preserved in the
// returned *ParseError.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned := CleanFences(raw)

	var result map[string]any
	err := json.Unmarshal([]byte(cleaned), &result)
	if err == nil {
		return result, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		candidate := cleaned[start : end+1]
		if retryErr := json.Unmarshal([]byte(candidate), &result); retryErr == nil {
			return result, nil
		}
	}

	return nil, &ParseError{Raw: raw, Err: err}
}
