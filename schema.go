package tutorsy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// FieldType is the declared type of a schema property.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
)

// FieldSpec describes one schema property.
type FieldSpec struct {
	Type    FieldType `yaml:"type"`
	Default any       `yaml:"default,omitempty"`
}

// ToolSchema is the immutable field contract for one tool. Required preserves
// declaration order; the clarify step asks for the first missing required
// field in that order.
type ToolSchema struct {
	Required   []string             `yaml:"required"`
	Properties map[string]FieldSpec `yaml:"properties"`
}

// PropertyNames returns the schema's property names in sorted order for
// deterministic iteration.
func (s ToolSchema) PropertyNames() []string {
	out := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// SchemaRegistry maps tool name to ToolSchema. Schemas are loaded once and
// treated as immutable configuration; Lookup for an unknown tool yields an
// empty schema rather than aborting the turn.
type SchemaRegistry struct {
	mu       sync.RWMutex
	schemas  map[string]ToolSchema
	compiled map[string]*jsonschema.Schema
}

// NewSchemaRegistry returns a registry preloaded with the built-in schemas
// for note_maker, flashcard_generator, and concept_explainer.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{
		schemas:  make(map[string]ToolSchema),
		compiled: make(map[string]*jsonschema.Schema),
	}
	for name, schema := range builtinSchemas() {
		r.register(name, schema)
	}
	return r
}

func builtinSchemas() map[string]ToolSchema {
	return map[string]ToolSchema{
		ToolNoteMaker: {
			Required: []string{"topic"},
			Properties: map[string]FieldSpec{
				"topic":             {Type: TypeString},
				"subject":           {Type: TypeString},
				"note_taking_style": {Type: TypeString, Default: "structured"},
				"include_examples":  {Type: TypeBoolean, Default: false},
				"include_analogies": {Type: TypeBoolean, Default: false},
			},
		},
		ToolFlashcardGenerator: {
			Required: []string{"topic", "count", "difficulty"},
			Properties: map[string]FieldSpec{
				"topic":            {Type: TypeString},
				"subject":          {Type: TypeString},
				"count":            {Type: TypeInteger, Default: 5},
				"num_questions":    {Type: TypeInteger},
				"difficulty":       {Type: TypeString, Default: "easy"},
				"question_type":    {Type: TypeString, Default: "practice"},
				"include_examples": {Type: TypeBoolean, Default: false},
			},
		},
		ToolConceptExplainer: {
			Required: []string{"concept_to_explain", "desired_depth"},
			Properties: map[string]FieldSpec{
				"concept_to_explain": {Type: TypeString},
				"current_topic":      {Type: TypeString},
				"topic":              {Type: TypeString},
				"subject":            {Type: TypeString},
				"desired_depth":      {Type: TypeString, Default: "intermediate"},
			},
		},
	}
}

func (r *SchemaRegistry) register(name string, schema ToolSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = schema
	compiled, err := compileSchema(schema)
	if err != nil {
		// A schema that cannot compile degrades to no boundary validation
		// rather than failing registration.
		delete(r.compiled, name)
		return
	}
	r.compiled[name] = compiled
}

// Lookup returns the schema for tool. Unknown tools get an empty schema
// (required=[]) and ok=false.
func (r *SchemaRegistry) Lookup(tool string) (ToolSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[tool]
	if !ok {
		return ToolSchema{Properties: map[string]FieldSpec{}}, false
	}
	return s, true
}

// Tools returns the registered tool names, sorted.
func (r *SchemaRegistry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ValidateAtBoundary checks a finalized payload against the tool's compiled
// JSON Schema just before invocation. Extra fields are permitted; type
// mismatches surface as a ClientError. Tools without a compiled schema pass.
func (r *SchemaRegistry) ValidateAtBoundary(tool string, payload map[string]any) error {
	r.mu.RLock()
	compiled, ok := r.compiled[tool]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	// Round-trip through JSON so numeric values carry the types the
	// validator expects, regardless of how the pipeline produced them.
	data, err := json.Marshal(payload)
	if err != nil {
		return &SystemError{Err: err}
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &SystemError{Err: err}
	}
	if err := compiled.Validate(v); err != nil {
		return &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return nil
}

// schemaFile is the YAML document shape accepted by LoadFile.
type schemaFile struct {
	Tools map[string]ToolSchema `yaml:"tools"`
}

// LoadFile overrides or extends the registry from a YAML file of the form:
//
//	tools:
//	  flashcard_generator:
//	    required: [topic, count]
//	    properties:
//	      topic: {type: string}
//	      count: {type: integer, default: 5}
//
// Unknown field types are rejected. Built-ins not mentioned in the file are
// retained.
func (r *SchemaRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse schema file: %w", err)
	}
	for name, schema := range doc.Tools {
		for field, spec := range schema.Properties {
			switch spec.Type {
			case TypeString, TypeInteger, TypeBoolean, TypeList:
			default:
				return fmt.Errorf("schema %s: field %s has unknown type %q", name, field, spec.Type)
			}
		}
		if schema.Properties == nil {
			schema.Properties = map[string]FieldSpec{}
		}
		r.register(name, schema)
	}
	return nil
}

// compileSchema builds a draft-2020 JSON Schema document from a ToolSchema
// and compiles it for boundary validation. Only declared properties are
// constrained; additional properties stay allowed because payloads carry
// context fields the schema does not describe.
func compileSchema(schema ToolSchema) (*jsonschema.Schema, error) {
	props := make(map[string]any, len(schema.Properties))
	for name, spec := range schema.Properties {
		props[name] = map[string]any{"type": jsonSchemaType(spec.Type)}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(schema.Required) > 0 {
		req := make([]any, len(schema.Required))
		for i, name := range schema.Required {
			req[i] = name
		}
		doc["required"] = req
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	const url = "mem://tutorsy/tool.schema.json"
	if err := c.AddResource(url, v); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func jsonSchemaType(t FieldType) string {
	if t == TypeList {
		return "array"
	}
	return string(t)
}
