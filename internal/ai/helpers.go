package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// stripCodeFence removes a surrounding ```json ... ``` (or bare ```) fence.
// The prompt forbids fences but models emit them anyway.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

var personFields = []string{"gender", "age", "description"}

// ParsePersonRecords parses a completion into person records. The text must
// be a JSON array (optionally fenced) whose every element carries gender, age
// and description as strings. Any deviation fails the whole parse.
func ParsePersonRecords(content string) ([]PersonRecord, error) {
	text := stripCodeFence(content)
	if text == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrAnalysisParseFailed)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisParseFailed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: completion is not a JSON array", ErrAnalysisParseFailed)
	}

	records := make([]PersonRecord, 0, len(raw))
	for i, obj := range raw {
		if obj == nil {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrAnalysisParseFailed, i)
		}
		values := make(map[string]string, len(personFields))
		for _, field := range personFields {
			v, ok := obj[field]
			if !ok {
				return nil, fmt.Errorf("%w: record %d is missing %q", ErrAnalysisParseFailed, i, field)
			}
			var s string
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return nil, fmt.Errorf("%w: record %d has null %q", ErrAnalysisParseFailed, i, field)
			}
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("%w: record %d field %q is not a string", ErrAnalysisParseFailed, i, field)
			}
			values[field] = s
		}
		records = append(records, PersonRecord{
			Gender:      values["gender"],
			Age:         values["age"],
			Description: values["description"],
		})
	}
	return records, nil
}

// readErrorBody returns a short, single-line excerpt of an error body for logs and errors.
func readErrorBody(body []byte) string {
	const limit = 512
	s := strings.NewReplacer("\n", " ", "\r", " ").Replace(strings.TrimSpace(string(body)))
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
