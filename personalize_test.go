package tutorsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustForMasteryFlashcards(t *testing.T) {
	tests := []struct {
		name           string
		level          any
		wantDifficulty string
		wantCount      int
	}{
		{"low band", 2, "easy", 5},
		{"band edge three", 3, "easy", 5},
		{"mid band", 5, "medium", 10},
		{"band edge six", 6, "medium", 10},
		{"high band", 8, "hard", 15},
		{"summary string parses", "Level 7 of 10", "hard", 15},
		{"unparsable falls to low band", "expert", "easy", 5},
		{"nil falls to low band", nil, "easy", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AdjustForMastery(ToolFlashcardGenerator, NewPayload(), tt.level)
			difficulty, _ := out.Get("difficulty")
			assert.Equal(t, tt.wantDifficulty, difficulty)
			count, _ := out.Get("count")
			assert.Equal(t, tt.wantCount, count)
			assert.True(t, out.IsInferred("difficulty"))
			assert.True(t, out.IsInferred("count"))
		})
	}
}

func TestAdjustForMasteryNoteMaker(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "outline"},
		{4, "bullet_points"},
		{9, "structured"},
	}
	for _, tt := range tests {
		out := AdjustForMastery(ToolNoteMaker, NewPayload(), tt.level)
		style, _ := out.Get("note_taking_style")
		assert.Equal(t, tt.want, style, "level %d", tt.level)
	}
}

func TestAdjustForMasteryConceptExplainer(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{2, "basic"},
		{5, "intermediate"},
		{8, "advanced"},
		{10, "comprehensive"},
	}
	for _, tt := range tests {
		out := AdjustForMastery(ToolConceptExplainer, NewPayload(), tt.level)
		depth, _ := out.Get("desired_depth")
		assert.Equal(t, tt.want, depth, "level %d", tt.level)
	}
}

func TestAdjustForMasteryKeepsExplicitValues(t *testing.T) {
	p := NewPayload()
	p.Set("difficulty", "easy")
	out := AdjustForMastery(ToolFlashcardGenerator, p, 5)

	difficulty, _ := out.Get("difficulty")
	assert.Equal(t, "easy", difficulty, "a stated difficulty survives the mastery band")
	count, _ := out.Get("count")
	assert.Equal(t, 10, count, "count default still applies")
}

func TestAdjustForMasteryClampsExplicitCount(t *testing.T) {
	p := NewPayload()
	p.Set("count", 40)
	out := AdjustForMastery(ToolFlashcardGenerator, p, 2)

	count, _ := out.Get("count")
	assert.Equal(t, 5, count, "caps bound even stated counts")
	assert.True(t, out.IsInferred("count"), "a clamped value is machine-derived")

	within := NewPayload()
	within.Set("count", 4)
	out = AdjustForMastery(ToolFlashcardGenerator, within, 2)
	count, _ = out.Get("count")
	assert.Equal(t, 4, count)
	assert.True(t, out.IsExplicit("count"), "counts under the cap stay as stated")
}

func TestAdjustForEmotion(t *testing.T) {
	t.Run("confused flashcards", func(t *testing.T) {
		p := NewPayload()
		p.SetInferred("count", 12)
		out := AdjustForEmotion(ToolFlashcardGenerator, p, "confused")
		count, _ := out.Get("count")
		assert.Equal(t, 5, count)
		difficulty, _ := out.Get("difficulty")
		assert.Equal(t, "easy", difficulty)
	})
	t.Run("focused raises derived counts", func(t *testing.T) {
		p := NewPayload()
		p.SetInferred("count", 5)
		out := AdjustForEmotion(ToolFlashcardGenerator, p, "focused")
		count, _ := out.Get("count")
		assert.Equal(t, 10, count)
	})
	t.Run("focused leaves stated counts alone", func(t *testing.T) {
		p := NewPayload()
		p.Set("count", 5)
		out := AdjustForEmotion(ToolFlashcardGenerator, p, "focused")
		count, _ := out.Get("count")
		assert.Equal(t, 5, count, "floors never override the user's ask")
		assert.True(t, out.IsExplicit("count"))
	})
	t.Run("tired flashcards", func(t *testing.T) {
		out := AdjustForEmotion(ToolFlashcardGenerator, NewPayload(), "tired")
		count, _ := out.Get("count")
		assert.Equal(t, 3, count)
		difficulty, _ := out.Get("difficulty")
		assert.Equal(t, "easy", difficulty)
	})
	t.Run("confused notes", func(t *testing.T) {
		out := AdjustForEmotion(ToolNoteMaker, NewPayload(), "Confused")
		examples, _ := out.Get("include_examples")
		assert.Equal(t, true, examples)
		analogies, _ := out.Get("include_analogies")
		assert.Equal(t, true, analogies)
	})
	t.Run("tired explainer simplifies", func(t *testing.T) {
		p := NewPayload()
		p.SetInferred("desired_depth", "advanced")
		out := AdjustForEmotion(ToolConceptExplainer, p, "tired")
		depth, _ := out.Get("desired_depth")
		assert.Equal(t, "basic", depth)
	})
	t.Run("focused explainer keeps an existing depth", func(t *testing.T) {
		p := NewPayload()
		p.SetInferred("desired_depth", "advanced")
		out := AdjustForEmotion(ToolConceptExplainer, p, "focused")
		depth, _ := out.Get("desired_depth")
		assert.Equal(t, "advanced", depth)

		out = AdjustForEmotion(ToolConceptExplainer, NewPayload(), "focused")
		depth, _ = out.Get("desired_depth")
		assert.Equal(t, "intermediate", depth)
	})
	t.Run("unknown emotion is a no-op", func(t *testing.T) {
		out := AdjustForEmotion(ToolFlashcardGenerator, NewPayload(), "ecstatic")
		assert.Empty(t, out.Fields)
	})
}

func TestAdjustForLearningStyle(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		style string
		field string
		want  any
	}{
		{"visual flashcards", ToolFlashcardGenerator, "visual", "include_examples", true},
		{"auditory flashcards", ToolFlashcardGenerator, "auditory", "include_examples", false},
		{"visual notes", ToolNoteMaker, "visual", "include_analogies", true},
		{"auditory notes", ToolNoteMaker, "auditory", "note_taking_style", "narrative"},
		{"slash normalizes", ToolNoteMaker, "reading/writing", "note_taking_style", "bullet_points"},
		{"kinesthetic notes", ToolNoteMaker, "kinesthetic", "note_taking_style", "structured"},
		{"auditory explainer", ToolConceptExplainer, "auditory", "desired_depth", "basic"},
		{"visual explainer seeds depth", ToolConceptExplainer, "visual", "desired_depth", "intermediate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AdjustForLearningStyle(tt.tool, NewPayload(), tt.style)
			v, ok := out.Get(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestAdjustPersonalizationOrderAndDefaults(t *testing.T) {
	// Unset profile fields resolve to defaults: mastery 5, neutral, visual.
	out := AdjustPersonalization(ToolFlashcardGenerator, NewPayload(), Profile{})
	difficulty, _ := out.Get("difficulty")
	assert.Equal(t, "medium", difficulty)
	count, _ := out.Get("count")
	assert.Equal(t, 10, count)
	examples, _ := out.Get("include_examples")
	assert.Equal(t, true, examples)

	// Emotion runs after mastery, so a tired user ends below the mastery band.
	out = AdjustPersonalization(ToolFlashcardGenerator, NewPayload(), Profile{
		MasteryLevel:   8,
		EmotionalState: "tired",
	})
	count, _ = out.Get("count")
	assert.Equal(t, 3, count)
	difficulty, _ = out.Get("difficulty")
	assert.Equal(t, "easy", difficulty)
}

func TestAdjustPersonalizationIdempotent(t *testing.T) {
	profile := Profile{MasteryLevel: 4, EmotionalState: "confused", LearningStyle: "auditory"}
	p := NewPayload()
	p.Set("topic", "algebra")

	once := AdjustPersonalization(ToolFlashcardGenerator, p, profile)
	twice := AdjustPersonalization(ToolFlashcardGenerator, once, profile)
	assert.Equal(t, once.Fields, twice.Fields)
}

func TestAdjustPersonalizationScenarioExplicitEasy(t *testing.T) {
	// Mastery 5 maps to medium, but the user already said easy.
	p := NewPayload()
	p.Set("topic", "photosynthesis")
	p.Set("count", 5)
	p.Set("difficulty", "easy")

	out := AdjustPersonalization(ToolFlashcardGenerator, p, Profile{MasteryLevel: 5})
	difficulty, _ := out.Get("difficulty")
	assert.Equal(t, "easy", difficulty)
	count, _ := out.Get("count")
	assert.Equal(t, 5, count)
}

func TestAdjustersDoNotMutateInput(t *testing.T) {
	p := NewPayload()
	p.SetInferred("count", 12)
	_ = AdjustForEmotion(ToolFlashcardGenerator, p, "confused")
	count, _ := p.Get("count")
	assert.Equal(t, 12, count)
}
