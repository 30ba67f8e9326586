package types

import (
	"context"

	"github.com/xhad/scribe/internal/models"
)

// Core interfaces

// Embedder turns a batch of texts into dense vectors, one per input, in
// input order, all of the same dimensionality.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore persists vectors with metadata and answers nearest-neighbor
// queries. Query results carry normalized similarity scores in [0,1].
type VectorStore interface {
	Upsert(ctx context.Context, records []models.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.RetrievalCandidate, error)
	Close()
}

// Loader fetches raw documents from an external source.
type Loader interface {
	Load(ctx context.Context, source string) ([]models.Document, error)
}

// Chunker splits a document into overlapping segments for embedding.
type Chunker interface {
	Chunk(doc models.Document) []models.Chunk
}

// Retriever embeds a query, searches the vector store, and returns filtered,
// ranked candidates.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK, rerankK int) ([]models.RetrievalCandidate, error)
}

// Generator invokes a language model with a built prompt.
type Generator interface {
	Generate(ctx context.Context, req models.ContentRequest, contextDocs []models.RetrievalCandidate, cfg models.GenerationConfig) (*models.GeneratedResult, error)
}

// Reranker reorders retrieval candidates by a richer relevance signal. The
// retriever applies it between filtering and truncation when configured.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []models.RetrievalCandidate) ([]models.RetrievalCandidate, error)
}

// Queue hands a pipeline run to a background worker.
type Queue interface {
	Enqueue(ctx context.Context, payload []byte) (string, error)
	Result(ctx context.Context, taskID string) ([]byte, bool, error)
}
