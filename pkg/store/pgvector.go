package store

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/scribe/internal/models"
)

// PgVector stores records in Postgres with the pgvector extension. Cosine
// distance from the <=> operator is converted to similarity (1 - distance)
// at query time.
type PgVector struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func newPgVector(config VectorStoreConfig) (*PgVector, error) {
	if config.TableName == "" {
		config.TableName = "content_chunks"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &PgVector{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *PgVector) initialize() error {
	ctx := context.Background()

	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Upsert writes records in one transaction. Re-upserting an id overwrites
// the prior content, vector, and metadata.
func (vs *PgVector) Upsert(ctx context.Context, records []models.VectorRecord) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	for _, rec := range records {
		if len(rec.Vector) != vs.config.VectorDim {
			return fmt.Errorf("record %s: expected vector dim %d, got %d", rec.ID, vs.config.VectorDim, len(rec.Vector))
		}

		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %v", rec.ID, err)
		}

		_, err = tx.Exec(ctx, stmt,
			rec.ID,
			sanitizeUTF8(rec.Text),
			pgvector.NewVector(rec.Vector),
			meta,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the topK nearest records by cosine distance, with the score
// reported as similarity so an exact match scores 1.
func (vs *PgVector) Query(ctx context.Context, vector []float32, topK int) ([]models.RetrievalCandidate, error) {
	if topK == 0 {
		topK = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	embedding := pgvector.NewVector(vector)
	rows, err := vs.pool.Query(ctx, query, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %v", err)
	}
	defer rows.Close()

	var candidates []models.RetrievalCandidate
	for rows.Next() {
		var c models.RetrievalCandidate
		var meta []byte
		var score float64
		if err := rows.Scan(&c.ID, &c.Text, &meta, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &c.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %v", c.ID, err)
			}
		}
		c.Score = clampScore(float32(score))
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

func (vs *PgVector) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func clampScore(s float32) float32 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
