package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/embedder"
	"github.com/xhad/scribe/pkg/ingest"
	"github.com/xhad/scribe/pkg/loader"
	"github.com/xhad/scribe/pkg/store"
)

// Round trip: ingest one document, then query with the vector of a known
// chunk and expect that chunk back with similarity 1.
func TestIngest_RoundTrip(t *testing.T) {
	ctx := context.Background()

	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{Mode: embedder.ModeStub, Dimension: 16})
	require.NoError(t, err)
	m := store.NewMemory(16)

	in := ingest.NewWithConfig(ingest.IngestConfig{ChunkSize: 5, Overlap: 1},
		loader.NewWithConfig(loader.LoaderConfig{}), e, m)

	doc := models.Document{
		ID:       "doc1",
		Text:     "Para one.\n\nPara two.\n\nPara three.",
		Metadata: map[string]interface{}{"content_type": "blog_post"},
	}
	require.NoError(t, in.IngestDocuments(ctx, []models.Document{doc}))
	require.GreaterOrEqual(t, m.Len(), 2)

	// Embed the first chunk's text again and query: exact match comes back
	// first with similarity 1 and the deterministic chunk id.
	vecs, err := e.Embed(ctx, []string{"Para one. Para two."})
	require.NoError(t, err)

	results, err := m.Query(ctx, vecs[0], 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "doc1_chunk_0", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Equal(t, "blog_post", results[0].Metadata["content_type"])
}

func TestIngest_EmptySetIsNoOp(t *testing.T) {
	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{Mode: embedder.ModeStub, Dimension: 8})
	require.NoError(t, err)
	m := store.NewMemory(8)

	in := ingest.NewWithConfig(ingest.IngestConfig{},
		loader.NewWithConfig(loader.LoaderConfig{}), e, m)

	require.NoError(t, in.IngestDocuments(context.Background(), nil))
	assert.Zero(t, m.Len())
}

func TestIngest_BadSourceSkipped(t *testing.T) {
	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{Mode: embedder.ModeStub, Dimension: 8})
	require.NoError(t, err)
	m := store.NewMemory(8)

	in := ingest.NewWithConfig(ingest.IngestConfig{},
		loader.NewWithConfig(loader.LoaderConfig{RateLimit: 100}), e, m)

	// Unreachable source: logged and skipped, not an error.
	err = in.Run(context.Background(), []string{"http://127.0.0.1:1/nope"}, nil)
	assert.NoError(t, err)
	assert.Zero(t, m.Len())
}
