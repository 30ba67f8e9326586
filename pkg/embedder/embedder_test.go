package embedder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/scribe/pkg/embedder"
)

func TestEmbedder_StubDeterministic(t *testing.T) {
	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:      embedder.ModeStub,
		Dimension: 8,
	})
	require.NoError(t, err)

	ctx := context.Background()

	first, err := e.Embed(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	second, err := e.Embed(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	for _, v := range first {
		assert.Len(t, v, 8)
	}
	// Different inputs produce different vectors.
	assert.NotEqual(t, first[0], first[1])
}

func TestEmbedder_OrderPreserved(t *testing.T) {
	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:      embedder.ModeStub,
		Dimension: 4,
	})
	require.NoError(t, err)

	ctx := context.Background()
	texts := []string{"one", "two", "three"}

	batch, err := e.Embed(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		single, err := e.Embed(ctx, []string{text})
		require.NoError(t, err)
		assert.Equal(t, single[0], batch[i])
	}
}

func TestEmbedder_EmptyInput(t *testing.T) {
	e, err := embedder.NewWithConfig(embedder.EmbedderConfig{Mode: embedder.ModeStub})
	require.NoError(t, err)

	out, err := e.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestEmbedder_OpenAIRequiresKey(t *testing.T) {
	_, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:     embedder.ModeLive,
		Provider: "openai",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, embedder.ErrMissingCredentials)
}

func TestEmbedder_UnknownProvider(t *testing.T) {
	_, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:     embedder.ModeLive,
		Provider: "cohere-classic",
	})
	assert.Error(t, err)
}

func TestTFIDF_FitTransform(t *testing.T) {
	v := embedder.NewTFIDF(16)

	corpus := []string{
		"the cat sat on the mat",
		"a dog barked at the cat",
		"vectors and matrices everywhere",
	}
	require.NoError(t, v.Fit(corpus))
	assert.Greater(t, v.Dimension(), 0)

	vec, err := v.Transform("the cat sat")
	require.NoError(t, err)
	assert.Len(t, vec, v.Dimension())

	// At least one non-zero component for in-vocabulary text.
	nonZero := false
	for _, x := range vec {
		if x != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)

	// Out-of-vocabulary text yields the zero vector, not an error.
	vec, err = v.Transform("zzz qqq")
	require.NoError(t, err)
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestTFIDF_TransformBeforeFit(t *testing.T) {
	v := embedder.NewTFIDF(8)
	_, err := v.Transform("anything")
	assert.Error(t, err)
}

func TestHybrid_Dimension(t *testing.T) {
	dense, err := embedder.NewWithConfig(embedder.EmbedderConfig{
		Mode:      embedder.ModeStub,
		Dimension: 8,
	})
	require.NoError(t, err)

	sparse := embedder.NewTFIDF(16)
	require.NoError(t, sparse.Fit([]string{"some words here", "more words there"}))

	h := embedder.NewHybrid(dense, sparse)
	assert.Equal(t, 8+sparse.Dimension(), h.Dimension())

	out, err := h.Embed(context.Background(), []string{"some words"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0], h.Dimension())
}
