// Package extract turns raw model output into a normalized intermediate.
// Model output is not guaranteed to be well-formed JSON: it arrives
// wrapped in code fences, prefixed with prose, or truncated. All of the
// forgiving parsing lives here; downstream stages only ever see the
// Normalized shape.
package extract

import (
	"encoding/json"
	"errors"
	"strings"
)

// Normalized always has both sequences, empty when extraction failed at
// any step. Elements stay untyped: shape validation is the pipeline's
// job, not the extractor's.
type Normalized struct {
	Errors    []any
	Solutions []any
}

var (
	errNoObject  = errors.New("no JSON object boundaries in model output")
	errNotObject = errors.New("model output is not a JSON object")
)

func empty() Normalized {
	return Normalized{Errors: []any{}, Solutions: []any{}}
}

// Normalize extracts the errors/possible_solutions payload from raw. It
// never fails: the returned Normalized is always usable, and the error is
// diagnostic only (why the result is empty).
func Normalize(raw string) (Normalized, error) {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || start >= end {
		return empty(), errNoObject
	}

	var parsed any
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return empty(), err
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return empty(), errNotObject
	}

	n := empty()
	if v, ok := obj["errors"].([]any); ok {
		n.Errors = v
	}
	if v, ok := obj["possible_solutions"].([]any); ok {
		n.Solutions = v
	}
	return n, nil
}

// stripFences removes a surrounding markdown code fence, tolerating a
// language tag on the opening fence and a missing closing fence.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
