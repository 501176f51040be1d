package testutil

import (
	"time"

	"github.com/skosovsky/tutorsy"
	"github.com/skosovsky/tutorsy/adapters"
)

// NewTestRegistry returns an adapter Registry with a long timeout and panic
// recovery enabled, suitable for tests.
func NewTestRegistry(as ...adapters.Adapter) *adapters.Registry {
	reg := adapters.NewRegistry(
		adapters.WithTimeout(30*time.Second),
		adapters.WithRecoverPanics(true),
	)
	for _, a := range as {
		reg.Register(a)
	}
	return reg
}

// NewTestEngine wires an Engine around a fresh in-memory store and the given
// adapters, returning the store for assertions.
func NewTestEngine(as ...adapters.Adapter) (*tutorsy.Engine, *tutorsy.MemoryStore) {
	store := tutorsy.NewMemoryStore()
	engine := tutorsy.NewEngine(store, NewTestRegistry(as...))
	return engine, store
}
