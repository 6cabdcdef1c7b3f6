package beacon

import "strings"

// FieldType buckets a field value into a semantic type tag for analytics.
// Pure and deterministic; used only for bucketing, never for validation.
func FieldType(fieldName string, value any) string {
	switch v := value.(type) {
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	case string:
		return classifyString(fieldName, v)
	default:
		return "unknown"
	}
}

func classifyString(fieldName, value string) string {
	lower := strings.ToLower(fieldName)
	switch {
	case strings.Contains(lower, "email"):
		return "email"
	case strings.Contains(lower, "url"):
		return "url"
	case strings.Contains(lower, "color"):
		return "color"
	case strings.Contains(lower, "date"):
		return "date"
	case len(value) > 100:
		return "text_long"
	default:
		return "text_short"
	}
}
