package tutorsy

import (
	"strings"
)

// The three personalization adjusters apply in a fixed order: mastery
// establishes a baseline, emotion may override toward more supportive
// settings, learning style fine-tunes presentation. Each adjuster mutates
// only the fields its table specifies, never removes a field outside the
// mapping, and is idempotent.
//
// Provenance contract: a value the user stated explicitly is never replaced
// by an adjuster. Numeric caps on count still clamp explicit values (they
// are bounds, not substitutions); floors only raise machine-derived counts.

// AdjustPersonalization runs the three adjusters in their fixed order with
// the profile's resolved attributes.
func AdjustPersonalization(tool string, p Payload, profile Profile) Payload {
	profile = profile.WithDefaults()
	p = AdjustForMastery(tool, p, profile.MasteryLevel)
	p = AdjustForEmotion(tool, p, profile.EmotionalState)
	p = AdjustForLearningStyle(tool, p, profile.LearningStyle)
	return p
}

// AdjustForMastery adapts tool parameters to the user's mastery level
// (1 beginner .. 10 expert). Unparsable or out-of-band input falls back to
// the low-mastery band.
func AdjustForMastery(tool string, p Payload, masteryLevel any) Payload {
	level, ok := parseMastery(masteryLevel)
	if !ok || level < 1 {
		level = 3
	}
	out := p.Clone()
	switch tool {
	case ToolFlashcardGenerator:
		switch {
		case level <= 3:
			setUnlessExplicit(out, "difficulty", "easy")
			clampCount(out, 5, 5)
		case level <= 6:
			setUnlessExplicit(out, "difficulty", "medium")
			clampCount(out, 10, 10)
		default:
			setUnlessExplicit(out, "difficulty", "hard")
			if _, has := out.Get("count"); !has {
				out.SetInferred("count", 15)
			}
		}
	case ToolNoteMaker:
		switch {
		case level <= 3:
			setUnlessExplicit(out, "note_taking_style", "outline")
		case level <= 6:
			setUnlessExplicit(out, "note_taking_style", "bullet_points")
		default:
			setUnlessExplicit(out, "note_taking_style", "structured")
		}
	case ToolConceptExplainer:
		switch {
		case level <= 3:
			setUnlessExplicit(out, "desired_depth", "basic")
		case level <= 6:
			setUnlessExplicit(out, "desired_depth", "intermediate")
		case level <= 9:
			setUnlessExplicit(out, "desired_depth", "advanced")
		default:
			setUnlessExplicit(out, "desired_depth", "comprehensive")
		}
	}
	return out
}

// AdjustForEmotion adapts tool parameters to the user's emotional state
// (focused, anxious, confused, tired; anything else is left alone).
func AdjustForEmotion(tool string, p Payload, emotionalState string) Payload {
	state := strings.ToLower(strings.TrimSpace(emotionalState))
	out := p.Clone()
	switch tool {
	case ToolFlashcardGenerator:
		switch state {
		case "confused":
			clampCount(out, 5, 5)
			setUnlessExplicit(out, "difficulty", "easy")
		case "focused":
			raiseCount(out, 10, 5)
		case "tired":
			clampCount(out, 3, 3)
			setUnlessExplicit(out, "difficulty", "easy")
		}
	case ToolNoteMaker:
		switch state {
		case "confused":
			setUnlessExplicit(out, "include_examples", true)
			setUnlessExplicit(out, "include_analogies", true)
		case "focused":
			setUnlessExplicit(out, "include_examples", true)
		case "tired":
			setUnlessExplicit(out, "note_taking_style", "outline")
		}
	case ToolConceptExplainer:
		switch state {
		case "confused", "tired":
			setUnlessExplicit(out, "desired_depth", "basic")
		case "focused":
			if _, has := out.Get("desired_depth"); !has {
				out.SetInferred("desired_depth", "intermediate")
			}
		}
	}
	return out
}

// AdjustForLearningStyle adapts presentation to the preferred learning style
// (visual, auditory, kinesthetic, reading_writing).
func AdjustForLearningStyle(tool string, p Payload, learningStyle string) Payload {
	style := strings.ToLower(strings.TrimSpace(learningStyle))
	style = strings.ReplaceAll(style, "/", "_")
	out := p.Clone()
	switch tool {
	case ToolFlashcardGenerator:
		switch style {
		case "visual", "kinesthetic":
			setUnlessExplicit(out, "include_examples", true)
		case "auditory":
			setUnlessExplicit(out, "include_examples", false)
		}
	case ToolNoteMaker:
		switch style {
		case "visual":
			setUnlessExplicit(out, "include_analogies", true)
		case "auditory":
			setUnlessExplicit(out, "note_taking_style", "narrative")
		case "reading_writing":
			setUnlessExplicit(out, "note_taking_style", "bullet_points")
		case "kinesthetic":
			setUnlessExplicit(out, "note_taking_style", "structured")
		}
	case ToolConceptExplainer:
		switch style {
		case "auditory":
			setUnlessExplicit(out, "desired_depth", "basic")
		case "visual", "kinesthetic":
			if _, has := out.Get("desired_depth"); !has {
				out.SetInferred("desired_depth", "intermediate")
			}
		}
	}
	return out
}

// setUnlessExplicit writes a machine-derived value unless the user stated the
// field literally.
func setUnlessExplicit(p Payload, name string, value any) {
	if p.IsExplicit(name) {
		return
	}
	p.SetInferred(name, value)
}

// clampCount bounds the flashcard count from above, defaulting when absent.
// Caps clamp explicit counts too; a clamped value counts as machine-derived.
func clampCount(p Payload, limit, def int) {
	current := countValue(p, def)
	if p.IsExplicit("count") && current <= limit {
		return
	}
	if current > limit {
		current = limit
	}
	p.SetInferred("count", current)
}

// raiseCount lifts a machine-derived count to at least floor; explicit counts
// are the user's ask and stay put.
func raiseCount(p Payload, floor, def int) {
	if p.IsExplicit("count") {
		return
	}
	current := countValue(p, def)
	if current < floor {
		current = floor
	}
	p.SetInferred("count", current)
}

func countValue(p Payload, def int) int {
	raw, ok := p.Get("count")
	if !ok {
		return def
	}
	if v, failed := coerceInt(raw); !failed {
		return v.(int)
	}
	return def
}
