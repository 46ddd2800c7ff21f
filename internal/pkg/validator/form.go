package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/xeipuuv/gojsonschema"
)

// formPayloadSchema accepts any JSON object; values are flattened to text afterwards
const formPayloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object"
}`

type formSchema struct {
	schema *gojsonschema.Schema
}

func mustFormSchema() formSchema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(formPayloadSchema))
	if err != nil {
		panic(fmt.Sprintf("compile form schema: %v", err))
	}
	return formSchema{schema: schema}
}

// ParseFormPayload validates a form submission and converts it into a mapping.
// Numbers and booleans keep their literal form, nested values become compact
// JSON text. Blank values and nulls are dropped.
func (v *Validator) ParseFormPayload(payload []byte) (entity.AnalysisValues, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: not a JSON document", entity.ErrInvalidPayload)
	}

	result, err := v.formSchema.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidPayload, strings.Join(errs, "; "))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}

	values := make(entity.AnalysisValues, len(raw))
	for key, msg := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		s, err := formValue(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", entity.ErrInvalidPayload, key, err)
		}
		if s != "" {
			values[key] = s
		}
	}

	return values, nil
}

// formValue renders one submitted value as text; null gives ""
func formValue(msg json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(trimmed), nil
	}
}
