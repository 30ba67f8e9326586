// Package ingest runs the offline batch path: load documents, chunk, embed,
// and upsert into the vector store.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/internal/types"
	"github.com/xhad/scribe/pkg/chunker"
	"github.com/xhad/scribe/pkg/loader"
)

type IngestConfig struct {
	ChunkSize int
	Overlap   int
	BatchSize int // chunks per embedding call

	// OnProgress is called once per processed source URL or feed.
	OnProgress func(source string)
}

type Ingestor struct {
	config   IngestConfig
	loader   *loader.Loader
	chunker  chunker.Chunker
	embedder types.Embedder
	store    types.VectorStore
}

func NewWithConfig(config IngestConfig, l *loader.Loader, e types.Embedder, s types.VectorStore) *Ingestor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 800
	}
	if config.Overlap == 0 {
		config.Overlap = 100
	}
	if config.BatchSize == 0 {
		config.BatchSize = 64
	}

	return &Ingestor{
		config:   config,
		loader:   l,
		chunker:  chunker.NewWithConfig(chunker.ChunkerConfig{ChunkSize: config.ChunkSize, Overlap: config.Overlap}),
		embedder: e,
		store:    s,
	}
}

// Run loads every source, then chunks, embeds, and upserts the result. A
// source that fails to load is logged and skipped; the rest of the batch
// proceeds. An empty load set is a no-op with a warning.
func (in *Ingestor) Run(ctx context.Context, urls, feeds []string) error {
	var docs []models.Document

	for _, url := range urls {
		doc, err := in.loader.LoadURL(ctx, url)
		if err != nil {
			log.Printf("%s failed to load %s: %v", color.YellowString("WARN"), url, err)
			continue
		}
		docs = append(docs, doc)
		in.progress(url)
	}

	for _, feed := range feeds {
		feedDocs, err := in.loader.LoadRSS(ctx, feed)
		if err != nil {
			log.Printf("%s failed to load feed %s: %v", color.YellowString("WARN"), feed, err)
			continue
		}
		docs = append(docs, feedDocs...)
		in.progress(feed)
	}

	if len(docs) == 0 {
		log.Printf("%s no documents loaded, nothing to ingest", color.YellowString("WARN"))
		return nil
	}

	return in.IngestDocuments(ctx, docs)
}

// IngestDocuments chunks and embeds pre-loaded documents and upserts them.
// Embedding runs in batches; the embedder's order guarantee keeps chunks and
// vectors aligned.
func (in *Ingestor) IngestDocuments(ctx context.Context, docs []models.Document) error {
	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, in.chunker.Chunk(doc)...)
	}
	if len(chunks) == 0 {
		log.Printf("%s documents produced no chunks, nothing to ingest", color.YellowString("WARN"))
		return nil
	}
	log.Printf("created %d chunks from %d documents", len(chunks), len(docs))

	for start := 0; start < len(chunks); start += in.config.BatchSize {
		end := start + in.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := in.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunk batch: %w", err)
		}

		records := make([]models.VectorRecord, len(batch))
		for i, c := range batch {
			records[i] = models.VectorRecord{
				ID:       c.ID,
				Vector:   vectors[i],
				Text:     c.Text,
				Metadata: c.Metadata,
			}
		}

		if err := in.store.Upsert(ctx, records); err != nil {
			return fmt.Errorf("failed to upsert records: %w", err)
		}
	}

	log.Printf("upsert complete, vector store updated")
	return nil
}

func (in *Ingestor) progress(source string) {
	if in.config.OnProgress != nil {
		in.config.OnProgress(source)
	}
}
