package chunker

import (
	"fmt"
	"strings"

	"github.com/xhad/scribe/internal/models"
)

// ChunkerConfig controls segment sizing. Sizes are measured in words, which
// stand in for tokens; swap in a real tokenizer if the embedding model's
// budget matters.
type ChunkerConfig struct {
	ChunkSize int // max words per chunk
	Overlap   int // words repeated at the start of the next window
}

type Chunker struct {
	config ChunkerConfig
}

func NewWithConfig(config ChunkerConfig) Chunker {
	if config.ChunkSize == 0 {
		config.ChunkSize = 800
	}
	if config.Overlap == 0 {
		config.Overlap = 100
	}
	if config.Overlap >= config.ChunkSize {
		config.Overlap = config.ChunkSize / 2
	}

	return Chunker{config: config}
}

// Chunk splits a document into overlapping segments. Paragraphs are grouped
// until the word budget would overflow, then each group is re-split by a
// fixed window so no chunk exceeds ChunkSize even when a single paragraph
// does. Every chunk shares the parent document's metadata and gets the id
// "<doc_id>_chunk_<index>". An empty document yields no chunks.
func (c *Chunker) Chunk(doc models.Document) []models.Chunk {
	grouped := c.groupParagraphs(doc.Text)

	var final []string
	for _, g := range grouped {
		final = append(final, c.splitWindow(g)...)
	}

	chunks := make([]models.Chunk, 0, len(final))
	for i, text := range final {
		chunks = append(chunks, models.Chunk{
			ID:       fmt.Sprintf("%s_chunk_%d", doc.ID, i),
			Text:     text,
			Metadata: doc.Metadata,
		})
	}
	return chunks
}

// groupParagraphs accumulates paragraphs until adding the next one would
// exceed the word budget. A paragraph that alone exceeds the budget still
// becomes one group; splitWindow subdivides it afterwards.
func (c *Chunker) groupParagraphs(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var groups []string
	var buffer []string
	bufferLen := 0

	for _, p := range paragraphs {
		pLen := len(strings.Fields(p))
		if pLen == 0 {
			continue
		}
		if bufferLen+pLen > c.config.ChunkSize && len(buffer) > 0 {
			groups = append(groups, strings.Join(buffer, " "))
			buffer = []string{p}
			bufferLen = pLen
		} else {
			buffer = append(buffer, p)
			bufferLen += pLen
		}
	}
	if len(buffer) > 0 {
		groups = append(groups, strings.Join(buffer, " "))
	}
	return groups
}

// splitWindow enforces the size ceiling with a sliding window: consecutive
// windows share Overlap words of context.
func (c *Chunker) splitWindow(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(words) {
		end := start + c.config.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end < len(words) {
			start = end - c.config.Overlap
		} else {
			start = end
		}
	}
	return out
}
