// Package validation checks request payloads against named JSON schemas
// before any handler decodes them.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every named schema; a schema that fails to compile is a
// programming error surfaced at startup.
func New() (*Validator, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(schemaSources))
	for name, source := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("compiling schema %q: %w", name, err)
		}
		compiled[name] = schema
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks a raw JSON payload against a named schema and returns the
// field-level violations; a nil, empty result means the payload is valid.
func (v *Validator) Validate(payload []byte, schemaName string) ([]ValidationError, error) {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", schemaName)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return []ValidationError{{Field: "", Message: "payload is not valid JSON"}}, nil
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, ValidationError{Field: e.Field(), Message: e.Description()})
	}
	return violations, nil
}
