package engine

import (
	"encoding/json"
	"strings"

	"github.com/HerbHall/themeforge/pkg/theme"
)

// parseCandidate extracts the candidate theme JSON from the model's message
// content. Models occasionally wrap JSON in code fences or prose despite the
// strict-JSON instruction, so the first balanced object is extracted before
// unmarshaling.
func parseCandidate(content string) (*theme.CandidateTheme, error) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, theme.NewServiceError(theme.ErrCodeParse, "failed to parse ai response: no JSON object found", nil)
	}

	var c theme.CandidateTheme
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, theme.NewServiceError(theme.ErrCodeParse, "failed to parse ai response", err)
	}
	return &c, nil
}

// extractJSON returns the outermost {...} object in content, tolerating
// markdown code fences and surrounding prose. Returns "" when no object is
// present.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
