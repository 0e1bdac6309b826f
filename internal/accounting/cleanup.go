package accounting

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"fisbench/internal/domain"
)

var (
	jsonFence  = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	plainFence = regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```")
)

// ExtractJSON strips Markdown code fences and any commentary around the
// outermost JSON object in an LLM response.
func ExtractJSON(raw string) string {
	s := raw
	switch {
	case strings.Contains(s, "```json"):
		if m := jsonFence.FindStringSubmatch(s); m != nil {
			s = m[1]
		}
	case strings.Contains(s, "```"):
		if m := plainFence.FindStringSubmatch(s); m != nil {
			s = m[1]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[start : end+1])
}

// DecodeObject cleans an LLM response and decodes it as a JSON object.
// Failures wrap domain.ErrMalformedLLMOutput.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned := ExtractJSON(raw)
	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedLLMOutput, err, Truncate(raw, 500))
	}
	if out == nil {
		return nil, fmt.Errorf("%w: response is null (raw: %s)", domain.ErrMalformedLLMOutput, Truncate(raw, 500))
	}
	return out, nil
}

// Truncate shortens s to at most maxLen bytes, appending "..." when cut. The
// cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
