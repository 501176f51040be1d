package sqlitestore_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/tutorsy"
	"github.com/skosovsky/tutorsy/sqlitestore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "profiles.db")
	store, err := sqlitestore.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()
	assert.NoError(t, store.Ping(context.Background()))
}

func TestGetAbsentUser(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertAndGet(t *testing.T) {
	store := openTestStore(t)

	merged, err := store.Upsert(context.Background(), tutorsy.Profile{
		UserID:       "u1",
		Name:         "Ada",
		MasteryLevel: 4,
		Attributes:   map[string]any{"topic": "algebra"},
	})
	require.NoError(t, err)
	assert.False(t, merged.LastInteraction.IsZero())

	got, ok, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 4, got.MasteryLevel)
	assert.Equal(t, "algebra", got.Attributes["topic"])
}

func TestUpsertMergesAcrossCalls(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Upsert(context.Background(), tutorsy.Profile{UserID: "u1", MasteryLevel: 4})
	require.NoError(t, err)
	merged, err := store.Upsert(context.Background(), tutorsy.Profile{
		UserID:         "u1",
		EmotionalState: "tired",
		Attributes:     map[string]any{"difficulty": "easy"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, merged.MasteryLevel, "earlier fields survive")
	assert.Equal(t, "tired", merged.EmotionalState)
	assert.Equal(t, "easy", merged.Attributes["difficulty"])

	got, ok, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.MasteryLevel)
	assert.Equal(t, "tired", got.EmotionalState)
}

func TestUpsertEmptyUserIDIsNoop(t *testing.T) {
	store := openTestStore(t)
	p, err := store.Upsert(context.Background(), tutorsy.Profile{Name: "anon"})
	require.NoError(t, err)
	assert.Equal(t, "anon", p.Name)

	_, ok, err := store.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertConcurrentNoLostUpdate(t *testing.T) {
	store := openTestStore(t)
	const writers = 10

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Upsert(context.Background(), tutorsy.Profile{
				UserID:     "u1",
				Attributes: map[string]any{fmt.Sprintf("k%d", i): i},
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	got, ok, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Attributes, writers, "every concurrent attribute write lands")
}

func TestStoreDrivesEngine(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Upsert(context.Background(), tutorsy.Profile{
		UserID:     "u1",
		Attributes: map[string]any{"topic": "photosynthesis"},
	})
	require.NoError(t, err)

	prev, ok, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	v, has := prev.Attribute("topic")
	require.True(t, has)
	assert.Equal(t, "photosynthesis", v)
}
