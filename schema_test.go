package tutorsy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinSchemas(t *testing.T) {
	r := NewSchemaRegistry()

	tests := []struct {
		tool     string
		required []string
	}{
		{ToolNoteMaker, []string{"topic"}},
		{ToolFlashcardGenerator, []string{"topic", "count", "difficulty"}},
		{ToolConceptExplainer, []string{"concept_to_explain", "desired_depth"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			schema, ok := r.Lookup(tt.tool)
			require.True(t, ok)
			assert.Equal(t, tt.required, schema.Required)
			for _, field := range tt.required {
				_, has := schema.Properties[field]
				assert.True(t, has, "required field %s must be a property", field)
			}
		})
	}

	assert.Equal(t,
		[]string{ToolConceptExplainer, ToolFlashcardGenerator, ToolNoteMaker},
		r.Tools())
}

func TestLookupUnknownTool(t *testing.T) {
	r := NewSchemaRegistry()
	schema, ok := r.Lookup("web_search")
	assert.False(t, ok)
	assert.Empty(t, schema.Required, "unknown tools degrade to an empty schema")
	assert.NotNil(t, schema.Properties)
}

func TestPropertyNamesSorted(t *testing.T) {
	s := ToolSchema{Properties: map[string]FieldSpec{
		"zeta": {Type: TypeString}, "alpha": {Type: TypeString}, "mid": {Type: TypeInteger},
	}}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.PropertyNames())
}

func TestValidateAtBoundary(t *testing.T) {
	r := NewSchemaRegistry()

	t.Run("valid payload passes", func(t *testing.T) {
		err := r.ValidateAtBoundary(ToolFlashcardGenerator, map[string]any{
			"topic":      "algebra",
			"count":      5,
			"difficulty": "easy",
		})
		assert.NoError(t, err)
	})

	t.Run("missing required field rejected", func(t *testing.T) {
		err := r.ValidateAtBoundary(ToolFlashcardGenerator, map[string]any{
			"topic": "algebra",
		})
		require.Error(t, err)
		assert.True(t, IsClientError(err))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("type mismatch rejected", func(t *testing.T) {
		err := r.ValidateAtBoundary(ToolFlashcardGenerator, map[string]any{
			"topic":      "algebra",
			"count":      "five",
			"difficulty": "easy",
		})
		require.Error(t, err)
		assert.True(t, IsClientError(err))
	})

	t.Run("extra fields permitted", func(t *testing.T) {
		err := r.ValidateAtBoundary(ToolNoteMaker, map[string]any{
			"topic":        "algebra",
			"current_mood": "great",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown tool passes", func(t *testing.T) {
		err := r.ValidateAtBoundary("web_search", map[string]any{"anything": 1})
		assert.NoError(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	writeSchema := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "tools.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("overrides and extends", func(t *testing.T) {
		r := NewSchemaRegistry()
		path := writeSchema(t, `
tools:
  flashcard_generator:
    required: [topic]
    properties:
      topic: {type: string}
      tags: {type: list}
  quiz_builder:
    required: [subject]
    properties:
      subject: {type: string}
      length: {type: integer, default: 10}
`)
		require.NoError(t, r.LoadFile(path))

		fg, ok := r.Lookup(ToolFlashcardGenerator)
		require.True(t, ok)
		assert.Equal(t, []string{"topic"}, fg.Required, "file replaces the built-in")

		qb, ok := r.Lookup("quiz_builder")
		require.True(t, ok)
		assert.Equal(t, []string{"subject"}, qb.Required)
		assert.Equal(t, 10, qb.Properties["length"].Default)

		_, ok = r.Lookup(ToolNoteMaker)
		assert.True(t, ok, "built-ins not mentioned in the file survive")
	})

	t.Run("unknown field type rejected", func(t *testing.T) {
		r := NewSchemaRegistry()
		path := writeSchema(t, `
tools:
  quiz_builder:
    properties:
      subject: {type: text}
`)
		err := r.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type")
	})

	t.Run("missing file", func(t *testing.T) {
		r := NewSchemaRegistry()
		assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
	})

	t.Run("loaded schema validates at the boundary", func(t *testing.T) {
		r := NewSchemaRegistry()
		path := writeSchema(t, `
tools:
  quiz_builder:
    required: [subject]
    properties:
      subject: {type: string}
`)
		require.NoError(t, r.LoadFile(path))
		assert.NoError(t, r.ValidateAtBoundary("quiz_builder", map[string]any{"subject": "math"}))
		err := r.ValidateAtBoundary("quiz_builder", map[string]any{"subject": 3})
		assert.True(t, IsClientError(err))
	})
}
