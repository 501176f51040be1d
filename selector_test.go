package tutorsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordSelector(t *testing.T) {
	tests := []struct {
		name    string
		history []Message
		latest  string
		want    []string
	}{
		{
			"flashcard keyword",
			nil,
			"I want flashcards about algebra",
			[]string{ToolFlashcardGenerator},
		},
		{
			"note keyword from history",
			[]Message{{Role: "user", Content: "please take notes for me"}},
			"thanks",
			[]string{ToolNoteMaker},
		},
		{
			"explain keyword",
			nil,
			"Explain photosynthesis",
			[]string{ToolConceptExplainer},
		},
		{
			"multiple matches in priority order",
			[]Message{{Role: "user", Content: "make flashcards and notes"}},
			"and explain the concept",
			[]string{ToolConceptExplainer, ToolFlashcardGenerator, ToolNoteMaker},
		},
		{
			"repeated keywords deduplicate",
			[]Message{{Role: "user", Content: "flashcards flashcards flashcards"}},
			"more flashcards",
			[]string{ToolFlashcardGenerator},
		},
		{
			"no signal",
			nil,
			"hello there",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordSelector{}.Select(tt.history, tt.latest)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzeContext(t *testing.T) {
	tests := []struct {
		name   string
		latest string
		want   []string
	}{
		{"summarize maps to note maker", "summarize this chapter", []string{ToolNoteMaker}},
		{"what is maps to explainer", "what is a derivative", []string{ToolConceptExplainer}},
		{"help pattern adds explainer", "help me with fractions", []string{ToolConceptExplainer}},
		{"contraction help pattern", "I can't do this", []string{ToolConceptExplainer}},
		{"dont understand pattern", "I don't understand recursion", []string{ToolConceptExplainer}},
		{"no signal", "good morning", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeContext(nil, tt.latest)
			assert.Equal(t, tt.want, got.Tools)
		})
	}
}

func TestAnalyzeContextDetectedText(t *testing.T) {
	ca := AnalyzeContext([]Message{{Role: "user", Content: "Make FLASHCARDS"}}, "NOW please")
	assert.Equal(t, "make flashcards now please", ca.DetectedText)
	assert.Equal(t, []string{ToolFlashcardGenerator}, ca.Tools)
}

func TestAnalyzeContextHelpPatternNoDuplicate(t *testing.T) {
	// Help pattern plus an explain keyword must not list the explainer twice.
	ca := AnalyzeContext(nil, "help me with this, explain it simply")
	assert.Equal(t, []string{ToolConceptExplainer}, ca.Tools)
}

func TestSelectorsArePure(t *testing.T) {
	history := []Message{{Role: "user", Content: "notes on biology"}}
	first := KeywordSelector{}.Select(history, "flashcards too")
	second := KeywordSelector{}.Select(history, "flashcards too")
	assert.Equal(t, first, second)
	assert.Equal(t, []Message{{Role: "user", Content: "notes on biology"}}, history)
}
