package retriever

import (
	"context"
	"fmt"
	"log"

	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/internal/types"
	"github.com/xhad/scribe/pkg/filters"
)

// RetrieverConfig fixes the filter policy and default fan-out for a
// retriever instance. The policy is decided at construction, not per query.
type RetrieverConfig struct {
	TopK    int // candidates fetched from the store
	RerankK int // candidates returned after filtering
	Policy  filters.Policy
}

// Retriever embeds a query, searches the vector store, filters, and narrows
// to the best candidates. With no Reranker configured, truncation after
// filtering is the only ranking beyond the store's similarity order.
type Retriever struct {
	config   RetrieverConfig
	embedder types.Embedder
	store    types.VectorStore
	reranker types.Reranker
}

func NewWithConfig(config RetrieverConfig, embedder types.Embedder, store types.VectorStore) *Retriever {
	if config.TopK == 0 {
		config.TopK = 20
	}
	if config.RerankK == 0 {
		config.RerankK = 8
	}
	if config.RerankK > config.TopK {
		config.RerankK = config.TopK
	}

	return &Retriever{
		config:   config,
		embedder: embedder,
		store:    store,
	}
}

// WithReranker installs a reranker applied between filtering and truncation.
func (r *Retriever) WithReranker(rr types.Reranker) *Retriever {
	r.reranker = rr
	return r
}

// Retrieve runs one query through embed → store search → filters → optional
// rerank → truncate. Zero topK/rerankK fall back to the configured defaults;
// rerankK is capped at topK.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK, rerankK int) ([]models.RetrievalCandidate, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}
	if rerankK <= 0 {
		rerankK = r.config.RerankK
	}
	if rerankK > topK {
		rerankK = topK
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	initial, err := r.store.Query(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	candidates := filters.Apply(initial, r.config.Policy)

	if r.reranker != nil {
		candidates, err = r.reranker.Rerank(ctx, query, candidates)
		if err != nil {
			return nil, fmt.Errorf("rerank failed: %w", err)
		}
	}

	if rerankK < len(candidates) {
		candidates = candidates[:rerankK]
	}

	log.Printf("retrieved %d documents for query", len(candidates))
	return candidates, nil
}
