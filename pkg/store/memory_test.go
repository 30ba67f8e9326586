package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/store"
)

func TestMemory_UpsertAndQuery(t *testing.T) {
	m := store.NewMemory(3)
	ctx := context.Background()

	err := m.Upsert(ctx, []models.VectorRecord{
		{ID: "a", Vector: []float32{1, 0, 0}, Text: "first"},
		{ID: "b", Vector: []float32{0, 1, 0}, Text: "second"},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}, Text: "third"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	results, err := m.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Exact match first with similarity 1, near match second.
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Equal(t, "c", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)

	// Scores stay in [0,1].
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(0))
		assert.LessOrEqual(t, r.Score, float32(1))
	}
}

func TestMemory_UpsertOverwrites(t *testing.T) {
	m := store.NewMemory(2)
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, []models.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}, Text: "old"},
	}))
	require.NoError(t, m.Upsert(ctx, []models.VectorRecord{
		{ID: "a", Vector: []float32{0, 1}, Text: "new"},
	}))

	assert.Equal(t, 1, m.Len())

	results, err := m.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Text)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
}

func TestMemory_DimensionMismatch(t *testing.T) {
	m := store.NewMemory(3)

	err := m.Upsert(context.Background(), []models.VectorRecord{
		{ID: "bad", Vector: []float32{1, 0}},
	})
	assert.Error(t, err)
}

func TestMemory_QueryEmpty(t *testing.T) {
	m := store.NewMemory(3)

	results, err := m.Query(context.Background(), []float32{1, 0, 0}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	s, err := store.Open(store.VectorStoreConfig{VectorDim: 4})
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*store.Memory)
	assert.True(t, ok)
}
