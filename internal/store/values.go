package store

import (
	"encoding/json"
	"time"
)

// Value coercion helpers. Documents round-trip through JSON in the postgres
// gateway, so numeric fields may come back as float64 and arrays as []any;
// services read fields through these instead of type-asserting.

// AsInt coerces a document field to int64, returning 0 for absent or
// non-numeric values.
func AsInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

// AsString coerces a document field to a string, returning "" for absent or
// non-string values.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsStrings coerces a document field to a string slice.
func AsStrings(v any) []string {
	switch vs := v.(type) {
	case []string:
		out := make([]string, len(vs))
		copy(out, vs)
		return out
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// AsIntMap coerces a document field to a string→int64 map (the shape of a
// reaction histogram).
func AsIntMap(v any) map[string]int64 {
	out := make(map[string]int64)
	switch m := v.(type) {
	case map[string]int64:
		for k, n := range m {
			out[k] = n
		}
	case map[string]any:
		for k, n := range m {
			out[k] = AsInt(n)
		}
	}
	return out
}

// AsTime coerces a document field to a time.Time, returning the zero time
// when the field is absent or unparseable. Times survive a JSON round trip
// as RFC 3339 strings.
func AsTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
