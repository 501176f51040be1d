package tutorsy

import (
	"time"

	"go.uber.org/zap"
)

// EngineOption configures an Engine (e.g. WithLogger, WithSchemaRegistry).
type EngineOption func(*Engine)

// WithLogger sets the engine's structured logger. The default is a no-op
// logger.
func WithLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSchemaRegistry replaces the built-in schema registry.
func WithSchemaRegistry(r *SchemaRegistry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.schemas = r
		}
	}
}

// WithSelector replaces the primary tool selection strategy. The
// guaranteed-coverage fallback (AnalyzeContext) still applies when the
// primary selects nothing.
func WithSelector(s Selector) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.selector = s
		}
	}
}

// WithExtractor replaces the first-pass payload extractor.
func WithExtractor(x Extractor) EngineOption {
	return func(e *Engine) {
		if x != nil {
			e.primary = x
		}
	}
}

// WithFallbackExtractor replaces the re-extraction strategy used when the
// first validated pass scores below ConfidenceThreshold.
func WithFallbackExtractor(x Extractor) EngineOption {
	return func(e *Engine) {
		if x != nil {
			e.fallback = x
		}
	}
}

// WithClock overrides the engine's time source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
