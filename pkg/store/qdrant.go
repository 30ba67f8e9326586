package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xhad/scribe/internal/models"
)

// Qdrant is a minimal REST client to a Qdrant collection. The collection is
// created with cosine distance if missing, so scores come back as similarity
// already.
type Qdrant struct {
	config VectorStoreConfig
	client *http.Client
}

func newQdrant(config VectorStoreConfig) (*Qdrant, error) {
	if config.Collection == "" {
		config.Collection = "content_chunks"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	q := &Qdrant{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}

	if err := q.ensureCollection(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) ensureCollection() error {
	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.config.VectorDim,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 when the collection already exists with the same
	// schema; anything else propagates.
	return q.do(context.Background(), http.MethodPut,
		fmt.Sprintf("%s/collections/%s", q.config.QdrantURL, q.config.Collection), body, nil)
}

func (q *Qdrant) Upsert(ctx context.Context, records []models.VectorRecord) error {
	points := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		payload := map[string]interface{}{"text": rec.Text}
		for k, v := range rec.Metadata {
			payload[k] = v
		}
		payload["_id"] = rec.ID
		points[i] = map[string]interface{}{
			"id":      pointID(rec.ID),
			"vector":  rec.Vector,
			"payload": payload,
		}
	}
	body := map[string]interface{}{"points": points}
	return q.do(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", q.config.QdrantURL, q.config.Collection), body, nil)
}

func (q *Qdrant) Query(ctx context.Context, vector []float32, topK int) ([]models.RetrievalCandidate, error) {
	if topK == 0 {
		topK = q.config.SearchLimit
	}

	req := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	err := q.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", q.config.QdrantURL, q.config.Collection), req, &resp)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.RetrievalCandidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		c := models.RetrievalCandidate{
			Score:    clampScore(float32(r.Score)),
			Metadata: map[string]interface{}{},
		}
		for k, v := range r.Payload {
			switch k {
			case "_id":
				if s, ok := v.(string); ok {
					c.ID = s
				}
			case "text":
				if s, ok := v.(string); ok {
					c.Text = s
				}
			default:
				c.Metadata[k] = v
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (q *Qdrant) Close() {}

// pointID maps our string ids onto the UUID point ids Qdrant accepts. The
// mapping is deterministic so re-upserting a record overwrites its point.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func (q *Qdrant) do(ctx context.Context, method, url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode qdrant request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.config.QdrantAPIKey != "" {
		req.Header.Set("api-key", q.config.QdrantAPIKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, url, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %v", err)
		}
	}
	return nil
}
