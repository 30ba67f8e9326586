// Package filters holds the pure predicates applied to retrieval candidates
// after the vector store returns them: score threshold, content-type
// allow-list, and date range. All functions return fresh slices and never
// mutate their input. Scores are the normalized similarities the store
// produces, so thresholds mean the same thing on every backend.
package filters

import (
	"time"

	"github.com/xhad/scribe/internal/models"
)

// DateKey is the metadata key the date-range filter reads by default.
const DateKey = "last_updated"

// Policy bundles the filter arguments the retriever applies per query.
type Policy struct {
	MinScore     float32
	AllowedTypes []string
	Start        *time.Time
	End          *time.Time
}

// ByScore keeps candidates whose similarity meets or exceeds minScore.
func ByScore(docs []models.RetrievalCandidate, minScore float32) []models.RetrievalCandidate {
	out := make([]models.RetrievalCandidate, 0, len(docs))
	for _, d := range docs {
		if d.Score >= minScore {
			out = append(out, d)
		}
	}
	return out
}

// ByContentType keeps candidates whose metadata content_type is in the
// allow-list. An empty allow-list keeps everything.
func ByContentType(docs []models.RetrievalCandidate, allowedTypes []string) []models.RetrievalCandidate {
	if len(allowedTypes) == 0 {
		return append([]models.RetrievalCandidate(nil), docs...)
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	out := make([]models.RetrievalCandidate, 0, len(docs))
	for _, d := range docs {
		ct, _ := d.Metadata["content_type"].(string)
		if _, ok := allowed[ct]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ByDateRange keeps candidates whose metadata timestamp under DateKey falls
// within [start, end], bounds inclusive and each optional. When any bound is
// set, candidates with a missing or unparsable timestamp are dropped rather
// than surfacing a data error. With no bounds it keeps everything.
func ByDateRange(docs []models.RetrievalCandidate, start, end *time.Time) []models.RetrievalCandidate {
	return ByDateRangeKey(docs, start, end, DateKey)
}

// ByDateRangeKey is ByDateRange with a caller-chosen metadata key.
func ByDateRangeKey(docs []models.RetrievalCandidate, start, end *time.Time, dateKey string) []models.RetrievalCandidate {
	if start == nil && end == nil {
		return append([]models.RetrievalCandidate(nil), docs...)
	}

	out := make([]models.RetrievalCandidate, 0, len(docs))
	for _, d := range docs {
		raw, _ := d.Metadata[dateKey].(string)
		if raw == "" {
			continue
		}
		ts, err := parseTimestamp(raw)
		if err != nil {
			continue
		}
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Apply runs the three filters in fixed order: score, content type, date.
// Each stage operates on the previous stage's output.
func Apply(docs []models.RetrievalCandidate, policy Policy) []models.RetrievalCandidate {
	filtered := ByScore(docs, policy.MinScore)
	filtered = ByContentType(filtered, policy.AllowedTypes)
	filtered = ByDateRange(filtered, policy.Start, policy.End)
	return filtered
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
