package tutorsy

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Tool names known to the built-in schema registry and the mock adapters.
const (
	ToolNoteMaker          = "note_maker"
	ToolFlashcardGenerator = "flashcard_generator"
	ToolConceptExplainer   = "concept_explainer"
)

// Default personalization attributes applied when a profile field is absent.
// Mastery defaults to the middle of the 1-10 band so a fresh user is neither
// coddled nor thrown into the deep end.
const (
	DefaultMasteryLevel   = 5
	DefaultEmotionalState = "neutral"
	DefaultLearningStyle  = "visual"
	DefaultTeachingStyle  = "direct"
)

// Message is one prior chat message. Role follows the usual "user"/"assistant"
// convention but the pipeline only reads Content.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is a single incoming conversational turn. History and LatestMessage are
// read-only to the pipeline; UserInfo carries whatever the caller knows about
// the user this turn and is merged into the stored profile.
type Turn struct {
	UserInfo      Profile   `json:"user_info"`
	ChatHistory   []Message `json:"chat_history"`
	LatestMessage string    `json:"latest_message"`
}

// Profile holds durable per-user personalization attributes. Typed fields
// cover the known personalization axes; Attributes carries resolved payload
// fields (topic, count, ...) persisted after successful tool invocations so
// later turns can backfill them instead of re-asking the user.
type Profile struct {
	UserID          string         `json:"user_id"`
	Name            string         `json:"name,omitempty"`
	GradeLevel      string         `json:"grade_level,omitempty"`
	MasteryLevel    int            `json:"mastery_level,omitempty"`
	EmotionalState  string         `json:"emotional_state,omitempty"`
	LearningStyle   string         `json:"learning_style,omitempty"`
	TeachingStyle   string         `json:"teaching_style,omitempty"`
	LastInteraction time.Time      `json:"last_interaction,omitempty"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// Merge returns a copy of p with non-zero fields of in overriding p's values.
// Absent fields of in are retained from p; Attributes are merged key-wise.
// The receiver is not modified.
func (p Profile) Merge(in Profile) Profile {
	out := p
	if in.UserID != "" {
		out.UserID = in.UserID
	}
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.GradeLevel != "" {
		out.GradeLevel = in.GradeLevel
	}
	if in.MasteryLevel != 0 {
		out.MasteryLevel = in.MasteryLevel
	}
	if in.EmotionalState != "" {
		out.EmotionalState = in.EmotionalState
	}
	if in.LearningStyle != "" {
		out.LearningStyle = in.LearningStyle
	}
	if in.TeachingStyle != "" {
		out.TeachingStyle = in.TeachingStyle
	}
	if !in.LastInteraction.IsZero() {
		out.LastInteraction = in.LastInteraction
	}
	if len(in.Attributes) > 0 {
		merged := make(map[string]any, len(p.Attributes)+len(in.Attributes))
		maps.Copy(merged, p.Attributes)
		maps.Copy(merged, in.Attributes)
		out.Attributes = merged
	} else if p.Attributes != nil {
		out.Attributes = maps.Clone(p.Attributes)
	}
	return out
}

// WithDefaults returns a copy of p with absent personalization fields resolved
// to their defaults, so downstream code never sees a zero value.
func (p Profile) WithDefaults() Profile {
	out := p
	if out.MasteryLevel == 0 {
		out.MasteryLevel = DefaultMasteryLevel
	}
	if out.EmotionalState == "" {
		out.EmotionalState = DefaultEmotionalState
	}
	if out.LearningStyle == "" {
		out.LearningStyle = DefaultLearningStyle
	}
	if out.TeachingStyle == "" {
		out.TeachingStyle = DefaultTeachingStyle
	}
	return out
}

// Attribute looks up a profile value by payload field name: typed fields
// first, then the free-form Attributes map. Used by the engine's backfill
// step, which copies stored values verbatim and never invents new ones.
func (p Profile) Attribute(name string) (any, bool) {
	switch name {
	case "user_id":
		if p.UserID != "" {
			return p.UserID, true
		}
	case "name":
		if p.Name != "" {
			return p.Name, true
		}
	case "grade_level":
		if p.GradeLevel != "" {
			return p.GradeLevel, true
		}
	case "mastery_level":
		if p.MasteryLevel != 0 {
			return p.MasteryLevel, true
		}
	case "emotional_state":
		if p.EmotionalState != "" {
			return p.EmotionalState, true
		}
	case "learning_style":
		if p.LearningStyle != "" {
			return p.LearningStyle, true
		}
	case "teaching_style":
		if p.TeachingStyle != "" {
			return p.TeachingStyle, true
		}
	}
	v, ok := p.Attributes[name]
	return v, ok
}

var masteryDigits = regexp.MustCompile(`\d+`)

// ProfileFromMap builds a Profile from a loosely-typed user_info object as it
// arrives on the wire. It accepts both the plain field names and the
// "*_summary" variants, and parses mastery levels out of strings like
// "Level 7" or "mastery: 4/10".
func ProfileFromMap(m map[string]any) Profile {
	var p Profile
	str := func(keys ...string) string {
		for _, k := range keys {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	p.UserID = str("user_id")
	p.Name = str("name")
	p.GradeLevel = str("grade_level")
	p.EmotionalState = str("emotional_state_summary", "emotional_state")
	p.LearningStyle = str("learning_style_summary", "learning_style")
	p.TeachingStyle = str("teaching_style")
	for _, k := range []string{"mastery_level_summary", "mastery_level"} {
		if lvl, ok := parseMastery(m[k]); ok {
			p.MasteryLevel = lvl
			break
		}
	}
	known := map[string]bool{
		"user_id": true, "name": true, "grade_level": true,
		"emotional_state": true, "emotional_state_summary": true,
		"learning_style": true, "learning_style_summary": true,
		"teaching_style": true, "mastery_level": true, "mastery_level_summary": true,
		"last_interaction": true,
	}
	for k, v := range m {
		if known[k] || v == nil {
			continue
		}
		if p.Attributes == nil {
			p.Attributes = make(map[string]any)
		}
		p.Attributes[k] = v
	}
	return p
}

// parseMastery extracts an integer mastery level from an int, float, or a
// free-text summary containing digits.
func parseMastery(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, t != 0
	case float64:
		return int(t), t != 0
	case string:
		if d := masteryDigits.FindString(t); d != "" {
			n, err := strconv.Atoi(d)
			return n, err == nil
		}
	}
	return 0, false
}

// Payload is the field-value map built for one tool invocation. Each field
// carries a provenance marker: explicit (literal user-stated text) or
// inferred. Inferred fields discount extraction confidence and may be
// overridden by personalization; explicit fields are never overwritten by
// the adjusters or by profile backfill.
type Payload struct {
	Fields   map[string]any
	inferred map[string]bool
}

// NewPayload returns an empty payload.
func NewPayload() Payload {
	return Payload{Fields: make(map[string]any), inferred: make(map[string]bool)}
}

// Set records an explicitly user-stated field value.
func (p Payload) Set(name string, value any) {
	p.Fields[name] = value
	delete(p.inferred, name)
}

// SetInferred records a field value derived by inference rather than literal
// user text.
func (p Payload) SetInferred(name string, value any) {
	p.Fields[name] = value
	p.inferred[name] = true
}

// Get returns the value for name, or (nil, false) if unset.
func (p Payload) Get(name string) (any, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// IsInferred reports whether name was set by inference.
func (p Payload) IsInferred(name string) bool { return p.inferred[name] }

// IsExplicit reports whether name is set and was stated literally by the user.
func (p Payload) IsExplicit(name string) bool {
	_, ok := p.Fields[name]
	return ok && !p.inferred[name]
}

// InferredFields returns the sorted names of inferred fields.
func (p Payload) InferredFields() []string {
	out := make([]string, 0, len(p.inferred))
	for name := range p.inferred {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// InferredCount returns the number of inferred fields.
func (p Payload) InferredCount() int { return len(p.inferred) }

// Clone returns an independent copy. Each pipeline stage owns its payload;
// cloning keeps the stages from sharing mutable state.
func (p Payload) Clone() Payload {
	out := Payload{
		Fields:   make(map[string]any, len(p.Fields)),
		inferred: make(map[string]bool, len(p.inferred)),
	}
	maps.Copy(out.Fields, p.Fields)
	maps.Copy(out.inferred, p.inferred)
	return out
}

// IsEmptyValue reports whether v counts as "missing" for required-field
// checks: nil, the empty string, or an empty list.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// ToolPayload pairs a finalized payload with its extraction confidence.
// Confidence is observability only; invocation is gated solely by missing
// required fields.
type ToolPayload struct {
	Payload    map[string]any `json:"payload"`
	Confidence float64        `json:"confidence"`
}

// ToolResponse is the outcome of one tool invocation. Exactly one of Result
// and Error is set; a per-tool error does not abort the remaining tools.
type ToolResponse struct {
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Analysis carries selection diagnostics for observability.
type Analysis struct {
	AgentTools   []string `json:"agent_tools"`
	UsedFallback bool     `json:"used_fallback,omitempty"`
	DetectedText string   `json:"detected_text,omitempty"`
}

// Result is the outcome of one orchestrated turn. If ClarifyQuestion is set,
// ToolResponses contains only tools invoked before the loop halted.
type Result struct {
	SelectedTools   []string                `json:"selected_tools"`
	Analysis        Analysis                `json:"analysis"`
	Payloads        map[string]ToolPayload  `json:"payloads"`
	ToolResponses   map[string]ToolResponse `json:"tool_responses"`
	ClarifyQuestion string                  `json:"clarify_question,omitempty"`
}

// clarifyQuestion phrases the single-question-per-turn prompt for the first
// missing required field. The tool name is humanized ("note_maker" reads as
// "note maker").
func clarifyQuestion(tool, field string) string {
	return "Quick question: could you specify `" + field + "` for the " +
		strings.ReplaceAll(tool, "_", " ") + "?"
}
