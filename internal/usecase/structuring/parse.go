package structuring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
)

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	reasoningRe  = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// extractJSON isolates the object literal from a completion
func extractJSON(response string) string {
	cleaned := strings.TrimSpace(reasoningRe.ReplaceAllString(response, ""))
	if m := jsonObjectRe.FindString(cleaned); m != "" {
		return m
	}

	switch {
	case strings.HasPrefix(cleaned, "```json"):
		cleaned = strings.TrimPrefix(cleaned, "```json")
	case strings.HasPrefix(cleaned, "```"):
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// parseValues decodes a JSON object into a flat string mapping
func parseValues(response string) (entity.AnalysisValues, error) {
	raw := extractJSON(response)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if obj == nil {
		return nil, errors.New("completion is not a JSON object")
	}

	values := make(entity.AnalysisValues, len(obj))
	for key, msg := range obj {
		v, ok, err := flatten(msg)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		if ok {
			values[key] = v
		}
	}
	return values, nil
}

// flatten renders a JSON value as text; null reports ok=false
func flatten(msg json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	default:
		// numbers and booleans keep their literal form
		return string(trimmed), true, nil
	}
}
