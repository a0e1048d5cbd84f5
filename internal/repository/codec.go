package repository

import "time"

// Document field coercion helpers. Data coming back from the store is
// schema-optional and, behind some backends, JSON round-tripped: numbers
// arrive as float64, arrays as []any, timestamps as RFC3339 strings.
// Missing count and array fields default to zero and empty per the feed
// contract.

func asString(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func asInt(data map[string]any, key string) int {
	switch n := data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asStringSlice(data map[string]any, key string) []string {
	switch arr := data[key].(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out
	case []any:
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func asTime(data map[string]any, key string) time.Time {
	switch t := data[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
