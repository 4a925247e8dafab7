package llm

import (
	"regexp"
	"strings"
)

var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// CleanJSONContent strips the markdown fences and surrounding chatter that
// models wrap around JSON despite instructions. Returns the best candidate
// JSON object, or the trimmed input when none is found.
func CleanJSONContent(raw string) []byte {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") {
		return []byte(s)
	}
	if m := reJSONObject.FindString(s); m != "" {
		return []byte(m)
	}
	return []byte(s)
}
