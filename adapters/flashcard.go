package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/skosovsky/tutorsy"
)

// maxFlashcards bounds a single generation run regardless of the requested
// count.
const maxFlashcards = 20

type flashcardArgs struct {
	Topic           string `json:"topic" jsonschema:"required" description:"Subject matter of the flashcards"`
	Count           int    `json:"count,omitempty" description:"Number of cards to generate"`
	NumQuestions    int    `json:"num_questions,omitempty"`
	Difficulty      string `json:"difficulty,omitempty" enum:"easy,medium,hard"`
	QuestionType    string `json:"question_type,omitempty"`
	IncludeExamples bool   `json:"include_examples,omitempty"`
}

// FlashcardGenerator is a mock flashcard tool that fabricates question/answer
// cards for a topic.
type FlashcardGenerator struct {
	latency time.Duration
}

// NewFlashcardGenerator returns the mock flashcard generator.
func NewFlashcardGenerator() *FlashcardGenerator {
	return &FlashcardGenerator{latency: 60 * time.Millisecond}
}

func (f *FlashcardGenerator) Name() string { return tutorsy.ToolFlashcardGenerator }

func (f *FlashcardGenerator) Description() string {
	return "Generates practice flashcards for a topic."
}

func (f *FlashcardGenerator) Parameters() map[string]any { return reflectSchema(&flashcardArgs{}) }

// Invoke produces count mock cards (count falls back to num_questions, then
// 5, and is clamped at maxFlashcards).
func (f *FlashcardGenerator) Invoke(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if err := simulateLatency(ctx, f.latency); err != nil {
		return nil, err
	}
	topic := stringField(payload, "topic")
	if topic == "" {
		return nil, &tutorsy.ClientError{Reason: "missing fields for flashcard_generator: [topic]"}
	}
	count := intField(payload, 5, "count", "num_questions")
	if count < 1 {
		count = 5
	}
	if count > maxFlashcards {
		count = maxFlashcards
	}
	cards := make([]any, 0, count)
	for i := 1; i <= count; i++ {
		cards = append(cards, map[string]any{
			"title":    fmt.Sprintf("%s - card %d", topic, i),
			"question": fmt.Sprintf("What is %s concept %d?", topic, i),
			"answer":   fmt.Sprintf("Answer for %s concept %d.", topic, i),
			"example":  fmt.Sprintf("Example %d", i),
		})
	}
	return map[string]any{
		"tool":       tutorsy.ToolFlashcardGenerator,
		"topic":      topic,
		"flashcards": cards,
		"count":      len(cards),
	}, nil
}

var _ Adapter = (*FlashcardGenerator)(nil)
