package tutorsy

import (
	"regexp"
	"slices"
	"strings"
)

// Selector decides which tools apply to a turn. The keyword implementations
// below are a stand-in for a learned model; the engine only depends on this
// interface so a model-backed selector can be swapped in without touching
// the orchestration loop.
type Selector interface {
	Select(history []Message, latestMessage string) []string
}

// toolPriority is the deterministic output order when several tools match.
var toolPriority = []string{ToolConceptExplainer, ToolFlashcardGenerator, ToolNoteMaker}

// primaryKeywords backs the agent-style shortcut selection.
var primaryKeywords = map[string][]string{
	ToolFlashcardGenerator: {"flashcard"},
	ToolNoteMaker:          {"note", "notes"},
	ToolConceptExplainer:   {"explain", "concept"},
}

// fallbackKeywords is the broader guaranteed-coverage table used when the
// primary pass selects nothing.
var fallbackKeywords = map[string][]string{
	ToolNoteMaker:          {"note", "notes", "summarize", "summarise"},
	ToolFlashcardGenerator: {"flashcard", "flashcards", "flash card"},
	ToolConceptExplainer:   {"explanation", "explain simply", "what is", "understand", "explain"},
}

// helpPattern detects help-seeking language; a match always adds
// concept_explainer in the fallback pass.
var helpPattern = regexp.MustCompile(
	`help me with|i'm struggling with|i cant|i can't|i don't understand|i do not understand`)

// combinedText lower-cases and joins all message content plus the latest
// message, the shared input of selection and extraction.
func combinedText(history []Message, latestMessage string) string {
	parts := make([]string, 0, len(history)+1)
	for _, m := range history {
		parts = append(parts, m.Content)
	}
	parts = append(parts, latestMessage)
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}

// matchKeywords returns the tools whose keyword set hits text, in priority
// order, deduplicated.
func matchKeywords(table map[string][]string, text string) []string {
	hit := make(map[string]bool, len(table))
	for tool, keywords := range table {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hit[tool] = true
				break
			}
		}
	}
	var out []string
	for _, tool := range toolPriority {
		if hit[tool] {
			out = append(out, tool)
		}
	}
	return out
}

// KeywordSelector is the primary, agent-style selection shortcut: a small
// keyword table over the concatenated conversation text.
type KeywordSelector struct{}

// Select returns the matching tools in deterministic priority order. Pure
// function of its inputs.
func (KeywordSelector) Select(history []Message, latestMessage string) []string {
	return matchKeywords(primaryKeywords, combinedText(history, latestMessage))
}

// ContextAnalysis is the fallback selection outcome.
type ContextAnalysis struct {
	Tools        []string
	DetectedText string
}

// AnalyzeContext is the guaranteed-coverage fallback strategy: the wider
// keyword table plus the help-seeking pattern, over the same concatenated
// text. Callers use it when the primary selector returns nothing.
func AnalyzeContext(history []Message, latestMessage string) ContextAnalysis {
	text := combinedText(history, latestMessage)
	tools := matchKeywords(fallbackKeywords, text)
	if helpPattern.MatchString(text) && !slices.Contains(tools, ToolConceptExplainer) {
		tools = append([]string{ToolConceptExplainer}, tools...)
	}
	return ContextAnalysis{Tools: tools, DetectedText: text}
}

// ContextSelector adapts AnalyzeContext to the Selector interface.
type ContextSelector struct{}

func (ContextSelector) Select(history []Message, latestMessage string) []string {
	return AnalyzeContext(history, latestMessage).Tools
}
