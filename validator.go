package tutorsy

import (
	"math"
	"strconv"
	"strings"
)

// ConfidenceThreshold is the score below which the engine re-runs extraction
// via the fallback strategy. The floor in ValidatePayload keeps failed
// coercions at or above this threshold, so confidence never gates
// clarification on its own; missing-field detection does.
const ConfidenceThreshold = 0.6

// ValidatePayload coerces each schema property of candidate to its declared
// type and scores extraction confidence.
//
// When every property is present and coercible, the normalized payload keeps
// only the schema properties (coerced) and confidence is 0.95 minus 0.02 per
// inferred field, capped at a 0.10 discount. When any property is absent or
// fails coercion, the candidate passes through unchanged and confidence is
// 0.5 x (fraction of required fields present) + 0.3 x min(1, inferred/required),
// floored at 0.6 so downstream logic always receives a workable payload.
func ValidatePayload(schema ToolSchema, candidate Payload) (Payload, float64) {
	names := schema.PropertyNames()
	coerced := NewPayload()
	ok := true
	for _, name := range names {
		raw, present := candidate.Get(name)
		if !present {
			ok = false
			continue
		}
		value, err := coerceValue(schema.Properties[name].Type, raw)
		if err {
			ok = false
			continue
		}
		if candidate.IsInferred(name) {
			coerced.SetInferred(name, value)
		} else {
			coerced.Set(name, value)
		}
	}

	inferred := float64(candidate.InferredCount())
	if ok {
		confidence := 0.95 - math.Min(0.10, 0.02*inferred)
		return coerced, confidence
	}

	required := math.Max(1, float64(len(schema.Required)))
	present := 0.0
	for _, name := range schema.Required {
		if v, has := candidate.Get(name); has && !IsEmptyValue(v) {
			present++
		}
	}
	confidence := 0.5*(present/required) + 0.3*math.Min(1, inferred/required)
	confidence = math.Max(confidence, ConfidenceThreshold)
	return candidate.Clone(), confidence
}

// coerceValue converts raw to the declared field type. The second return is
// true when coercion fails.
func coerceValue(t FieldType, raw any) (any, bool) {
	switch t {
	case TypeInteger:
		return coerceInt(raw)
	case TypeBoolean:
		return coerceBool(raw)
	case TypeList:
		return coerceList(raw)
	default:
		return coerceString(raw)
	}
}

func coerceInt(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return v, false
	case int64:
		return int(v), false
	case float64:
		if v == math.Trunc(v) {
			return int(v), false
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, false
		}
	}
	return nil, true
}

func coerceBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, false
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, false
		}
	}
	return nil, true
}

func coerceList(raw any) (any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, false
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, false
	}
	return nil, true
}

func coerceString(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, false
	case int:
		return strconv.Itoa(v), false
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), false
	case bool:
		return strconv.FormatBool(v), false
	}
	return nil, true
}
