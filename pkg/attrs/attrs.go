// Package attrs reads slog-style key/value lists ([k1, v1, k2, v2, ...]).
package attrs

import "fmt"

// ExtractString returns the string value stored under key, or "" when the
// key is absent or its value is not a string. The first match wins.
func ExtractString(list []any, key string) string {
	for i := 0; i+1 < len(list); i += 2 {
		if k, ok := list[i].(string); ok && k == key {
			v, _ := list[i+1].(string)
			return v
		}
	}
	return ""
}

// StringMap flattens list into a map, formatting non-string values with
// fmt.Sprint. Non-string keys, keys in skip and empty values are dropped.
// Returns nil when nothing remains.
func StringMap(list []any, skip ...string) map[string]string {
	var out map[string]string
	for i := 0; i+1 < len(list); i += 2 {
		k, ok := list[i].(string)
		if !ok || contains(skip, k) {
			continue
		}
		if _, seen := out[k]; seen {
			continue
		}
		var v string
		switch val := list[i+1].(type) {
		case string:
			v = val
		case nil:
			continue
		default:
			v = fmt.Sprint(val)
		}
		if v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
