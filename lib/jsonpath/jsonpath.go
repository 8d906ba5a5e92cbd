// Package jsonpath reads values out of decoded JSON documents using
// dot-separated key paths. The platform wraps list endpoints in wildly
// inconsistent envelopes ("items", "data.items", "data.info.total"),
// so every extraction site goes through Read instead of type-asserting
// its way down by hand.
package jsonpath

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Read looks up a dot-separated path in a decoded JSON document.
// An empty path returns the document itself. A missing segment or a
// non-object intermediate yields an empty object, never an error, so
// callers can treat a malformed envelope the same as an empty one.
func Read(doc any, path string) any {
	if path == "" {
		return doc
	}
	value := doc
	for _, key := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return map[string]any{}
		}
		value, ok = m[key]
		if !ok {
			return map[string]any{}
		}
	}
	return value
}

// Slice reads a path expected to hold a JSON array. Anything else,
// including the missing-segment sentinel, yields nil.
func Slice(doc any, path string) []any {
	value, _ := Read(doc, path).([]any)
	return value
}

// String reads a path expected to hold a string, returning "" otherwise.
func String(doc any, path string) string {
	value, _ := Read(doc, path).(string)
	return value
}

// Int reads a path expected to hold a number. The platform returns
// totals as JSON numbers on some endpoints and as quoted strings on
// others, so both are accepted.
func Int(doc any, path string) int {
	switch v := Read(doc, path).(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
