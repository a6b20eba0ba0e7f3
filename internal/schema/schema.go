// Package schema provides the validation gate applied to decoded messages.
// The engine is santhosh-tekuri/jsonschema; this package wraps it behind a
// pass/fail predicate that reports the first violation.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Violation describes the first schema check failure for a message.
type Violation struct {
	InstanceLocation string `json:"instance_location"`
	KeywordLocation  string `json:"keyword_location"`
	Message          string `json:"message"`
}

func (v *Violation) String() string {
	if v.InstanceLocation == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.InstanceLocation, v.Message)
}

// Validator checks a decoded message and reports the first violation,
// or nil when the message conforms.
type Validator interface {
	Validate(v any) *Violation
}

// Compile builds a Validator from a JSON Schema document. YAML documents are
// accepted and normalized to JSON before compilation.
func Compile(doc []byte) (Validator, error) {
	normalized, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	s, err := jsonschema.CompileString("schema.json", normalized)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &validator{schema: s}, nil
}

// CompileFile reads a schema document from disk and compiles it.
func CompileFile(path string) (Validator, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return Compile(doc)
}

// normalize passes JSON documents through untouched and converts YAML
// documents to JSON text.
func normalize(doc []byte) (string, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return string(trimmed), nil
	}
	var v any
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return "", fmt.Errorf("parsing schema document: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("normalizing schema document: %w", err)
	}
	return string(out), nil
}

type validator struct {
	schema *jsonschema.Schema
}

func (j *validator) Validate(v any) *Violation {
	err := j.schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaf := firstLeaf(ve)
		return &Violation{
			InstanceLocation: leaf.InstanceLocation,
			KeywordLocation:  leaf.KeywordLocation,
			Message:          leaf.Message,
		}
	}
	return &Violation{Message: err.Error()}
}

// firstLeaf walks the cause tree to the first concrete failure so callers
// see "missing property foo" rather than "doesn't validate".
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
