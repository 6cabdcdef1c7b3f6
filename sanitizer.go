package beacon

import (
	"regexp"
	"strings"
)

// Sanitizer redacts sensitive substrings and keys from tracked values before
// they are stored or transmitted. It assumes plain, acyclic, JSON-shaped
// input (maps, slices, scalars) and never fails: anything it cannot walk is
// passed through unchanged.
type Sanitizer struct {
	patterns []redactionPattern
}

type redactionPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// sensitiveKeys are matched case-insensitively as substrings of map keys;
// a hit replaces the value wholesale, regardless of its type.
var sensitiveKeys = []string{"password", "token", "secret"}

// NewSanitizer creates a sanitizer with the built-in redaction patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: []redactionPattern{
			// 16 digits with optional space/dash separators
			{regexp.MustCompile(`\b(?:\d[ -]?){15}\d\b`), "[CARD_NUMBER]"},
			{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[EMAIL]"},
			{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
		},
	}
}

// SanitizeValue returns a redacted copy of value. Strings are scrubbed by
// pattern; maps and slices are walked recursively; other types pass through.
func (s *Sanitizer) SanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return s.redactString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if isSensitiveKey(key) {
				out[key] = "[REDACTED]"
				continue
			}
			out[key] = s.SanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = s.SanitizeValue(inner)
		}
		return out
	default:
		return value
	}
}

func (s *Sanitizer) redactString(value string) string {
	for _, p := range s.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
