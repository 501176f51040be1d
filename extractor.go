package tutorsy

import (
	"regexp"
	"strconv"
	"strings"
)

// Extractor derives a candidate payload from the conversation. The heuristic
// implementation is a stand-in for a real language-understanding component;
// the engine depends only on this interface. Extraction never fails: absence
// of any signal simply leaves a field unset.
type Extractor interface {
	Extract(schema ToolSchema, history []Message, latestMessage string, profile Profile) Payload
}

var (
	topicPattern     = regexp.MustCompile(`(?:about|on|with|for)\s+([a-z0-9][a-z0-9\s-]*)`)
	firstIntPattern  = regexp.MustCompile(`\d+`)
	countNounPattern = regexp.MustCompile(`(\d+)\s+(?:flashcards|questions|problems|cards)`)
)

var (
	distressWords  = []string{"struggling", "can't", "cannot", "don't understand", "confused", "hard"}
	challengeWords = []string{"practice", "challenge", "challenging", "harder"}
	practiceWords  = []string{"practice", "problems", "flashcards"}
)

// HeuristicExtractor implements the keyword/pattern extraction heuristics.
// Fields matched from literal user text are recorded as explicit; fields
// derived from indirect signals (distress vocabulary, subject lookups) are
// marked inferred so they discount confidence and stay overridable.
type HeuristicExtractor struct{}

// Extract builds a candidate payload. Heuristic precedence: topic, difficulty,
// count, question type, then fixed subject-specific overrides.
func (HeuristicExtractor) Extract(_ ToolSchema, history []Message, latestMessage string, _ Profile) Payload {
	text := combinedText(history, latestMessage)
	p := NewPayload()

	extractTopic(p, text, latestMessage)
	extractDifficulty(p, text)
	extractCount(p, text, latestMessage)

	if containsAny(text, practiceWords) {
		p.SetInferred("question_type", "practice")
	}

	// Subject-specific overrides: a fixed small lookup standing in for
	// richer domain knowledge.
	if strings.Contains(text, "calculus") {
		p.SetInferred("subject", "calculus")
	}
	if strings.Contains(text, "photosynth") {
		p.SetInferred("topic", "photosynthesis")
		p.SetInferred("subject", "biology")
	}

	return p
}

// extractTopic matches "about/on/with/for <phrase>" in the combined text;
// failing that, a latest message of at most six words is taken verbatim as
// the topic. Both paths quote the user's own words, so the field is explicit.
func extractTopic(p Payload, text, latestMessage string) {
	if m := topicPattern.FindStringSubmatch(text); m != nil {
		p.Set("topic", strings.TrimSpace(m[1]))
		return
	}
	words := strings.Fields(latestMessage)
	if len(words) > 0 && len(words) <= 6 {
		p.Set("topic", strings.TrimSpace(latestMessage))
	}
}

// extractDifficulty takes the first literal easy/medium/hard mention;
// otherwise infers easy from distress language or medium from challenge
// language.
func extractDifficulty(p Payload, text string) {
	for _, level := range []string{"easy", "medium", "hard"} {
		if strings.Contains(text, level) {
			p.Set("difficulty", level)
			return
		}
	}
	if containsAny(text, distressWords) {
		p.SetInferred("difficulty", "easy")
	} else if containsAny(text, challengeWords) {
		p.SetInferred("difficulty", "medium")
	}
}

// extractCount takes the first integer literal in the latest message, else an
// integer immediately preceding a count noun anywhere in the text. The value
// is mirrored into both count and num_questions for schema compatibility.
func extractCount(p Payload, text, latestMessage string) {
	digits := firstIntPattern.FindString(latestMessage)
	if digits == "" {
		if m := countNounPattern.FindStringSubmatch(text); m != nil {
			digits = m[1]
		}
	}
	if digits == "" {
		return
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return
	}
	p.Set("count", n)
	p.Set("num_questions", n)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// FallbackExtractor is the guaranteed-coverage re-extraction strategy used
// when the first validated pass scores below the confidence threshold. It
// shares the heuristic table with HeuristicExtractor but additionally seeds
// schema defaults for fields the heuristics left unset, so a re-extraction
// always yields a workable candidate.
type FallbackExtractor struct{}

func (FallbackExtractor) Extract(schema ToolSchema, history []Message, latestMessage string, profile Profile) Payload {
	p := HeuristicExtractor{}.Extract(schema, history, latestMessage, profile)
	for name, spec := range schema.Properties {
		if spec.Default == nil {
			continue
		}
		if _, ok := p.Get(name); !ok {
			p.SetInferred(name, spec.Default)
		}
	}
	return p
}
