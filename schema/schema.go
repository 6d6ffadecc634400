package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// Schema is message schema interface
type Schema interface {
	// String returns the content sent to, or received from, the language model
	String() string
}

// Unmarshaler is implemented by schemas that decode raw model output themselves
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// ErrEmptyContent is returned when the model replied with nothing to decode
var ErrEmptyContent = errors.New("empty model content")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Stringify returns the string presentation of a schema
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// IsText reports whether the schema is plain text rather than a structured JSON object
func IsText(s any) bool {
	switch s.(type) {
	case String, *String:
		return true
	}
	return false
}

// Unmarshal decodes model content into out and validates it.
// JSON content is repaired once before giving up.
func Unmarshal(content string, out any) error {
	if u, ok := out.(Unmarshaler); ok {
		return u.Unmarshal([]byte(content))
	}
	content = trimCodeFence(content)
	if content == "" {
		return ErrEmptyContent
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return fmt.Errorf("decode model output: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), out); err != nil {
			return fmt.Errorf("decode repaired model output: %w", err)
		}
	}
	return Validate(out)
}

// Validate runs struct validation on v using its `validate` tags
func Validate(v any) error {
	if IsText(v) {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return err
	}
	return nil
}

// JSONSchema returns the JSON schema of v, inlined without references
func JSONSchema(v any) string {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	bs, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return ""
	}
	return string(bs)
}

// trimCodeFence strips a surrounding markdown code fence, models like to add one
func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
