package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidToolInput is returned when tool arguments don't match the tool's schema.
var ErrInvalidToolInput = errors.New("invalid tool input")

// ValidateInput checks input against a JSON Schema. An empty schema accepts anything.
func ValidateInput(schema, input string) error {
	if schema == "" {
		return nil
	}
	if strings.TrimSpace(input) == "" {
		input = "{}"
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(input),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToolInput, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidToolInput, strings.Join(msgs, "; "))
}
