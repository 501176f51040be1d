// Package testutil provides test helpers for tutorsy (e.g. MockAdapter,
// FailingStore).
package testutil

import (
	"context"

	"github.com/skosovsky/tutorsy"
	"github.com/skosovsky/tutorsy/adapters"
)

// MockAdapter is a configurable Adapter implementation for tests.
type MockAdapter struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]any
	InvokeFn  func(ctx context.Context, payload map[string]any) (map[string]any, error)
	Calls     []map[string]any
}

// Name returns the adapter name.
func (m *MockAdapter) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the adapter description.
func (m *MockAdapter) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (or empty map).
func (m *MockAdapter) Parameters() map[string]any {
	if m.ParamsVal != nil {
		return m.ParamsVal
	}
	return map[string]any{}
}

// Invoke records the payload and runs InvokeFn if set; otherwise it echoes
// the payload.
func (m *MockAdapter) Invoke(ctx context.Context, payload map[string]any) (map[string]any, error) {
	m.Calls = append(m.Calls, payload)
	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, payload)
	}
	return map[string]any{"status": "ok", "echo": payload}, nil
}

// Ensure MockAdapter implements Adapter.
var _ adapters.Adapter = (*MockAdapter)(nil)

// FailingStore is a ProfileStore whose every operation fails with Err,
// for exercising the store-unavailable failure domain in isolation.
type FailingStore struct {
	Err error
}

func (s *FailingStore) Get(context.Context, string) (tutorsy.Profile, bool, error) {
	return tutorsy.Profile{}, false, s.Err
}

func (s *FailingStore) Upsert(_ context.Context, p tutorsy.Profile) (tutorsy.Profile, error) {
	return p, s.Err
}

var _ tutorsy.ProfileStore = (*FailingStore)(nil)
