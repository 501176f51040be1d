// Package tutorsy routes a conversational message to one or more educational
// tools (note maker, flashcard generator, concept explainer), builds a
// validated, personalized payload for each, and either invokes the tool or
// asks a single clarifying question when required information is missing.
//
// # Overview
//
// Pipeline per turn: select tools (keyword shortcut with a guaranteed-coverage
// fallback) → per tool: extract a candidate payload from the conversation →
// validate and score confidence (with a fallback re-extraction pass) → apply
// fixed tool defaults → personalize (mastery, emotion, learning style) →
// backfill missing required fields from the stored profile → clarify or
// invoke. The loop halts at the first unresolved tool, returning partial
// results, so the caller gets at most one question per turn.
//
// # Key concepts
//
//   - Provenance: every payload field is marked explicit (literal user text)
//     or inferred. Inferred fields discount confidence and may be overridden
//     by personalization; explicit fields are never overwritten.
//   - Confidence is observability only. Invocation is gated solely by missing
//     required fields, never by a low score.
//   - Backfill never invents values: it copies a previously stored profile
//     attribute verbatim or asks the user.
//
// The heuristic Selector and Extractor implementations are deliberate
// stand-ins for a language-understanding component; both are interfaces so a
// learned model can replace them without touching the orchestration loop.
//
// # Example
//
//	store := tutorsy.NewMemoryStore()
//	reg := adapters.NewRegistry()
//	reg.Register(adapters.NewNoteMaker())
//	engine := tutorsy.NewEngine(store, reg)
//	res, err := engine.HandleTurn(ctx, tutorsy.Turn{
//	    UserInfo:      tutorsy.Profile{UserID: "u1"},
//	    LatestMessage: "make notes about photosynthesis",
//	})
//	if err != nil { ... }
//	if res.ClarifyQuestion != "" { ... } // ask the user, try again next turn
package tutorsy
