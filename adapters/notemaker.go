package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/skosovsky/tutorsy"
)

// noteMakerArgs documents the payload fields the note maker reads; the same
// struct drives the advertised JSON Schema.
type noteMakerArgs struct {
	Topic            string `json:"topic" jsonschema:"required" description:"Subject matter the notes cover"`
	NoteTakingStyle  string `json:"note_taking_style,omitempty" enum:"outline,bullet_points,structured,narrative"`
	IncludeExamples  bool   `json:"include_examples,omitempty"`
	IncludeAnalogies bool   `json:"include_analogies,omitempty"`
}

// NoteMaker is a mock note-making tool that fabricates structured notes for
// a topic.
type NoteMaker struct {
	latency time.Duration
}

// NewNoteMaker returns the mock note maker.
func NewNoteMaker() *NoteMaker {
	return &NoteMaker{latency: 80 * time.Millisecond}
}

func (n *NoteMaker) Name() string        { return tutorsy.ToolNoteMaker }
func (n *NoteMaker) Description() string { return "Generates structured study notes for a topic." }

func (n *NoteMaker) Parameters() map[string]any { return reflectSchema(&noteMakerArgs{}) }

// Invoke produces mock notes: a title, a summary, and one overview section.
func (n *NoteMaker) Invoke(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if err := simulateLatency(ctx, n.latency); err != nil {
		return nil, err
	}
	topic := stringField(payload, "topic")
	if topic == "" {
		return nil, &tutorsy.ClientError{Reason: "missing fields for note_maker: [topic]"}
	}
	section := map[string]any{
		"title":      "Overview",
		"content":    fmt.Sprintf("Overview of %s", topic),
		"key_points": []any{"kp1", "kp2"},
		"examples":   []any{"ex1"},
	}
	return map[string]any{
		"tool":          tutorsy.ToolNoteMaker,
		"topic":         topic,
		"title":         fmt.Sprintf("Notes on %s", titleCase(topic)),
		"summary":       fmt.Sprintf("Short summary for %s (auto-generated).", topic),
		"note_sections": []any{section},
	}, nil
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	out := []rune(s)
	upWord := true
	for i, r := range out {
		if upWord && r >= 'a' && r <= 'z' {
			out[i] = r - ('a' - 'A')
		}
		upWord = r == ' '
	}
	return string(out)
}

var _ Adapter = (*NoteMaker)(nil)
