package store

import (
	"time"

	"github.com/xhad/scribe/internal/types"
)

// VectorStoreConfig selects and configures a backend. Selection is explicit
// and happens once, in Open: a Postgres DSN wins over a Qdrant URL, which
// wins over the volatile in-memory fallback. No ambient globals.
type VectorStoreConfig struct {
	// pgvector backend
	ConnString string
	TableName  string
	BatchSize  int

	// Qdrant backend
	QdrantURL    string
	QdrantAPIKey string
	Collection   string
	Timeout      time.Duration

	// shared
	VectorDim   int
	SearchLimit int
}

// Open picks the backend by credential presence, in priority order:
// pgvector, then Qdrant, then the in-memory fallback. Every backend
// normalizes query scores to cosine similarity in [0,1], higher better, so
// downstream filters work against one convention.
func Open(config VectorStoreConfig) (types.VectorStore, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	if config.ConnString != "" {
		return newPgVector(config)
	}
	if config.QdrantURL != "" {
		return newQdrant(config)
	}
	return NewMemory(config.VectorDim), nil
}
