package filters_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/scribe/internal/models"
	"github.com/xhad/scribe/pkg/filters"
)

func candidates() []models.RetrievalCandidate {
	return []models.RetrievalCandidate{
		{ID: "a", Score: 0.95, Metadata: map[string]interface{}{
			"content_type": "research_paper",
			"last_updated": "2024-03-01T00:00:00Z",
		}},
		{ID: "b", Score: 0.80, Metadata: map[string]interface{}{
			"content_type": "blog_post",
			"last_updated": "2024-06-15T12:30:00Z",
		}},
		{ID: "c", Score: 0.40, Metadata: map[string]interface{}{
			"content_type": "blog_post",
		}},
		{ID: "d", Score: 0.70, Metadata: map[string]interface{}{
			"content_type": "press_release",
			"last_updated": "not-a-date",
		}},
	}
}

func TestByScore(t *testing.T) {
	docs := candidates()
	got := filters.ByScore(docs, 0.75)

	require.Len(t, got, 2)
	for _, d := range got {
		assert.GreaterOrEqual(t, d.Score, float32(0.75))
	}

	// Input untouched.
	assert.Len(t, docs, 4)
}

func TestByScore_Idempotent(t *testing.T) {
	docs := candidates()
	once := filters.ByScore(docs, 0.7)
	twice := filters.ByScore(once, 0.7)
	assert.Equal(t, once, twice)
}

func TestByContentType(t *testing.T) {
	docs := candidates()

	got := filters.ByContentType(docs, []string{"blog_post"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	// Empty allow-list is a no-op.
	got = filters.ByContentType(docs, nil)
	assert.Len(t, got, 4)
}

func TestByDateRange_InclusiveBounds(t *testing.T) {
	docs := candidates()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

	// Both boundary documents are exactly on a bound and must be kept.
	got := filters.ByDateRange(docs, &start, &end)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestByDateRange_MissingOrBadDatesDropped(t *testing.T) {
	docs := candidates()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	got := filters.ByDateRange(docs, &start, nil)
	for _, d := range got {
		assert.NotEqual(t, "c", d.ID, "missing last_updated must be excluded")
		assert.NotEqual(t, "d", d.ID, "unparsable last_updated must be excluded")
	}
}

func TestByDateRange_NoBoundsNoOp(t *testing.T) {
	docs := candidates()
	got := filters.ByDateRange(docs, nil, nil)
	assert.Equal(t, docs, got)
}

func TestApply_OrderAndIdempotence(t *testing.T) {
	docs := candidates()
	policy := filters.Policy{
		MinScore:     0.5,
		AllowedTypes: []string{"blog_post", "research_paper"},
	}

	once := filters.Apply(docs, policy)
	require.Len(t, once, 2)
	assert.Equal(t, "a", once[0].ID)
	assert.Equal(t, "b", once[1].ID)

	twice := filters.Apply(once, policy)
	assert.Equal(t, once, twice)
}
