package embedder

import (
	"context"
	"fmt"

	"github.com/xhad/scribe/internal/types"
)

// Hybrid concatenates dense provider embeddings with sparse TF-IDF vectors.
// The sparse vectorizer must be fit over the ingest corpus first; queries and
// documents then share one combined space.
type Hybrid struct {
	dense  types.Embedder
	sparse *TFIDF
}

func NewHybrid(dense types.Embedder, sparse *TFIDF) *Hybrid {
	return &Hybrid{dense: dense, sparse: sparse}
}

func (h *Hybrid) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	dense, err := h.dense.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		sparse, err := h.sparse.Transform(text)
		if err != nil {
			return nil, fmt.Errorf("sparse embedding failed: %w", err)
		}
		combined := make([]float32, 0, len(dense[i])+len(sparse))
		combined = append(combined, dense[i]...)
		combined = append(combined, sparse...)
		out[i] = combined
	}
	return out, nil
}

func (h *Hybrid) Dimension() int {
	return h.dense.Dimension() + h.sparse.Dimension()
}
