package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/xhad/scribe/internal/models"
)

// Memory is the process-local fallback: brute-force cosine search over an
// ordered slice, guarded by a lock, lost on restart. It exists so the
// pipeline runs without any hosted backend configured.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	ids     map[string]int
	records []models.VectorRecord
}

func NewMemory(dim int) *Memory {
	return &Memory{
		dim: dim,
		ids: make(map[string]int),
	}
}

// Upsert appends new records and overwrites existing ids in place.
func (m *Memory) Upsert(ctx context.Context, records []models.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range records {
		if len(rec.Vector) != m.dim {
			return fmt.Errorf("record %s: expected vector dim %d, got %d", rec.ID, m.dim, len(rec.Vector))
		}
		if i, ok := m.ids[rec.ID]; ok {
			m.records[i] = rec
			continue
		}
		m.ids[rec.ID] = len(m.records)
		m.records = append(m.records, rec)
	}
	return nil
}

// Query scores every stored record by cosine similarity and returns the topK
// best, similarity-descending, clamped to [0,1].
func (m *Memory) Query(ctx context.Context, vector []float32, topK int) ([]models.RetrievalCandidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	candidates := make([]models.RetrievalCandidate, 0, len(m.records))
	for _, rec := range m.records {
		candidates = append(candidates, models.RetrievalCandidate{
			ID:       rec.ID,
			Text:     rec.Text,
			Score:    clampScore(cosine(rec.Vector, vector)),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

func (m *Memory) Close() {}

// Len reports the number of stored records; used by ingestion logging.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
