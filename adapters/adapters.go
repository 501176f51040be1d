// Package adapters provides the tool capability behind the orchestration
// engine: an Adapter contract, a Registry that executes adapters with
// timeout and panic recovery, and mock implementations of the three
// educational tools.
package adapters

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
)

// Adapter is the contract for one downstream tool. Invoke consumes a payload
// built by the orchestration pipeline and produces educational content. It is
// expected to suspend (network/model latency) and must honor ctx.
type Adapter interface {
	Name() string
	Description() string
	// Parameters returns a JSON Schema map describing the adapter's payload
	// (compatible with LLM tool definitions).
	Parameters() map[string]any
	Invoke(ctx context.Context, payload map[string]any) (map[string]any, error)
}

// reflectSchema generates a JSON Schema map from an argument struct. One set
// of struct tags drives both the advertised schema and the documentation of
// what each adapter reads from its payload.
func reflectSchema(v any) map[string]any {
	r := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	s := r.Reflect(v)
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// simulateLatency stands in for the network round-trip of a real tool while
// staying cancellable.
func simulateLatency(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stringField returns the first non-empty string value among keys.
func stringField(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// intField returns the first integer-like value among keys, else def.
func intField(payload map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		switch v := payload[k].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return def
}
