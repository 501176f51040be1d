package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/skosovsky/tutorsy"
)

type explainerArgs struct {
	ConceptToExplain string `json:"concept_to_explain" jsonschema:"required" description:"Concept the user wants explained"`
	CurrentTopic     string `json:"current_topic,omitempty"`
	DesiredDepth     string `json:"desired_depth,omitempty" enum:"basic,intermediate,advanced,comprehensive"`
}

// ConceptExplainer is a mock explanation tool. The concept falls back to the
// payload topic so a thin payload still produces something useful.
type ConceptExplainer struct {
	latency time.Duration
}

// NewConceptExplainer returns the mock concept explainer.
func NewConceptExplainer() *ConceptExplainer {
	return &ConceptExplainer{latency: 70 * time.Millisecond}
}

func (c *ConceptExplainer) Name() string { return tutorsy.ToolConceptExplainer }

func (c *ConceptExplainer) Description() string {
	return "Explains a concept with examples and practice questions."
}

func (c *ConceptExplainer) Parameters() map[string]any { return reflectSchema(&explainerArgs{}) }

// Invoke produces a mock explanation at the requested depth, plus one example
// and one practice question.
func (c *ConceptExplainer) Invoke(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if err := simulateLatency(ctx, c.latency); err != nil {
		return nil, err
	}
	concept := stringField(payload, "concept_to_explain", "topic")
	if concept == "" {
		concept = "concept"
	}
	depth := stringField(payload, "desired_depth")
	if depth == "" {
		depth = "basic"
	}
	return map[string]any{
		"tool":        tutorsy.ToolConceptExplainer,
		"concept":     concept,
		"explanation": fmt.Sprintf("A %s explanation of %s.", depth, concept),
		"examples":    []any{fmt.Sprintf("Example illustrating %s", concept)},
		"practice_questions": []any{
			fmt.Sprintf("Practice Q: Explain %s in your own words.", concept),
		},
	}, nil
}

var _ Adapter = (*ConceptExplainer)(nil)
