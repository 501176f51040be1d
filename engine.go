package tutorsy

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Invoker is the downstream tool capability. Implementations must tolerate
// unknown tool names by returning an error wrapping ErrNoAdapter rather than
// failing the whole request.
type Invoker interface {
	Invoke(ctx context.Context, tool string, payload map[string]any) (map[string]any, error)
}

// Engine drives the per-turn orchestration loop: tool selection, payload
// extraction and validation, personalization, profile backfill, and the
// clarify-or-invoke decision. Tool processing is sequential within a turn;
// a clarification on tool N halts processing of tool N+1. Engines are safe
// for concurrent use across requests.
type Engine struct {
	store    ProfileStore
	invoker  Invoker
	schemas  *SchemaRegistry
	selector Selector
	primary  Extractor
	fallback Extractor
	log      *zap.Logger
	now      func() time.Time
}

// NewEngine builds an Engine around the injected store and tool capability.
func NewEngine(store ProfileStore, invoker Invoker, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		invoker:  invoker,
		schemas:  NewSchemaRegistry(),
		selector: KeywordSelector{},
		primary:  HeuristicExtractor{},
		fallback: FallbackExtractor{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn orchestrates one conversational turn. The returned error is
// non-nil only for internal failures (profile store down); missing fields,
// unknown tools, and adapter failures are reported inside the Result.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn) (Result, error) {
	userID := turn.UserInfo.UserID

	var prev Profile
	var prevFound bool
	if userID != "" {
		var err error
		prev, prevFound, err = e.store.Get(ctx, userID)
		if err != nil {
			return Result{}, &SystemError{Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
		}
	}
	incoming := turn.UserInfo
	incoming.LastInteraction = e.now()
	merged, err := e.store.Upsert(ctx, incoming)
	if err != nil {
		return Result{}, &SystemError{Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
	}

	selected := e.selector.Select(turn.ChatHistory, turn.LatestMessage)
	analysis := Analysis{AgentTools: selected}
	if len(selected) == 0 {
		ca := AnalyzeContext(turn.ChatHistory, turn.LatestMessage)
		selected = ca.Tools
		analysis.UsedFallback = true
		analysis.DetectedText = ca.DetectedText
	}

	result := Result{
		SelectedTools: selected,
		Analysis:      analysis,
		Payloads:      make(map[string]ToolPayload, len(selected)),
		ToolResponses: make(map[string]ToolResponse, len(selected)),
	}
	e.log.Debug("tools selected",
		zap.String("user_id", userID),
		zap.Strings("tools", selected),
		zap.Bool("fallback", analysis.UsedFallback))

	for _, tool := range selected {
		schema, known := e.schemas.Lookup(tool)
		if !known {
			e.log.Warn("no schema for tool, proceeding with empty schema", zap.String("tool", tool))
		}

		payload, confidence := e.extractValidated(schema, turn, merged)
		payload = enrichPayload(tool, payload, turn.LatestMessage)
		payload = AdjustPersonalization(tool, payload, merged)

		// Backfill: a missing required field whose value the profile already
		// holds is copied verbatim, never derived or defaulted.
		if prevFound {
			for _, field := range missingRequired(schema, payload) {
				if v, ok := prev.Attribute(field); ok && !IsEmptyValue(v) {
					payload.Set(field, v)
				}
			}
		}

		fields := maps.Clone(payload.Fields)
		result.Payloads[tool] = ToolPayload{Payload: fields, Confidence: confidence}

		if missing := missingRequired(schema, payload); len(missing) > 0 {
			result.ClarifyQuestion = clarifyQuestion(tool, missing[0])
			e.log.Info("clarification required",
				zap.String("user_id", userID),
				zap.String("tool", tool),
				zap.Strings("missing", missing))
			return result, nil
		}

		resp, invokeErr := e.invoke(ctx, tool, payload)
		if invokeErr != nil {
			result.ToolResponses[tool] = ToolResponse{Error: invokeErr.Error()}
			e.log.Warn("tool invocation failed",
				zap.String("user_id", userID),
				zap.String("tool", tool),
				zap.Error(invokeErr))
			continue
		}
		result.ToolResponses[tool] = ToolResponse{Result: resp}
		e.log.Debug("tool invoked",
			zap.String("tool", tool),
			zap.Float64("confidence", confidence))

		// Persist the finalized fields so later turns backfill instead of
		// re-asking. Skipped when the request is already cancelled, so an
		// abandoned turn commits nothing partial.
		if userID != "" && ctx.Err() == nil {
			if err := e.persistResolved(ctx, userID, payload); err != nil {
				return Result{}, &SystemError{Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
			}
		}
	}
	return result, nil
}

// extractValidated runs the two-pass extraction strategy: a first heuristic
// pass, then a fallback re-extraction when the validated confidence falls
// below ConfidenceThreshold. The higher-confidence pair wins; ties prefer
// the later validated payload.
func (e *Engine) extractValidated(schema ToolSchema, turn Turn, profile Profile) (Payload, float64) {
	candidate := e.primary.Extract(schema, turn.ChatHistory, turn.LatestMessage, profile)
	validated, confidence := ValidatePayload(schema, candidate)
	if confidence >= ConfidenceThreshold {
		return validated, confidence
	}
	retry := e.fallback.Extract(schema, turn.ChatHistory, turn.LatestMessage, profile)
	revalidated, retryConfidence := ValidatePayload(schema, retry)
	if retryConfidence >= confidence {
		return revalidated, retryConfidence
	}
	return validated, confidence
}

// allowedDepths are the concept explainer's accepted depth settings.
var allowedDepths = map[string]bool{
	"basic": true, "intermediate": true, "advanced": true, "comprehensive": true,
}

// enrichPayload applies fixed tool-specific defaults before personalization.
// The concept explainer defaults its concept to the user's latest message,
// carries the extracted topic as current_topic, and normalizes desired_depth
// to an allowed value.
func enrichPayload(tool string, p Payload, latestMessage string) Payload {
	if tool != ToolConceptExplainer {
		return p
	}
	out := p.Clone()
	if _, ok := out.Get("concept_to_explain"); !ok && strings.TrimSpace(latestMessage) != "" {
		out.Set("concept_to_explain", latestMessage)
	}
	if _, ok := out.Get("current_topic"); !ok {
		if topic, has := out.Get("topic"); has {
			out.SetInferred("current_topic", topic)
		}
	}
	if raw, ok := out.Get("desired_depth"); ok {
		depth := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw)))
		if allowedDepths[depth] {
			out.Set("desired_depth", depth)
		} else {
			out.SetInferred("desired_depth", "intermediate")
		}
	}
	return out
}

// missingRequired returns the schema's required fields whose payload value is
// absent, the empty string, or an empty list, in schema-declared order.
func missingRequired(schema ToolSchema, p Payload) []string {
	var missing []string
	for _, field := range schema.Required {
		v, ok := p.Get(field)
		if !ok || IsEmptyValue(v) {
			missing = append(missing, field)
		}
	}
	return missing
}

// invoke runs the boundary schema check and then the tool capability.
func (e *Engine) invoke(ctx context.Context, tool string, p Payload) (map[string]any, error) {
	fields := maps.Clone(p.Fields)
	if err := e.schemas.ValidateAtBoundary(tool, fields); err != nil {
		return nil, err
	}
	return e.invoker.Invoke(ctx, tool, fields)
}

// persistResolved merges the finalized scalar payload fields into the user's
// stored attributes.
func (e *Engine) persistResolved(ctx context.Context, userID string, p Payload) error {
	attrs := make(map[string]any, len(p.Fields))
	for name, v := range p.Fields {
		switch v.(type) {
		case string, int, int64, float64, bool:
			if !IsEmptyValue(v) {
				attrs[name] = v
			}
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	_, err := e.store.Upsert(ctx, Profile{UserID: userID, Attributes: attrs})
	return err
}
