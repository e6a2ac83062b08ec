package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON decodes a model reply into out, tolerating the markdown code
// fences some models wrap JSON in. Decode failures are ErrMalformedOutput so
// callers can treat them as retryable.
func DecodeJSON(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
