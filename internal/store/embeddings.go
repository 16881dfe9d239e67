package store

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/painminer/painminer/internal/domain"
)

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return v
}

// SavePainEmbedding persists the vector for a pain event, overwriting any
// prior embedding for the same event (re-embedding after a model change).
func (s *Store) SavePainEmbedding(e *domain.PainEmbedding) error {
	_, err := s.db.Exec(`INSERT INTO pain_embeddings (pain_event_id, vector, model, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pain_event_id) DO UPDATE SET vector=excluded.vector, model=excluded.model, created_at=excluded.created_at`,
		e.PainEventID, encodeVector(e.Vector), e.Model, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("save pain embedding: %w", err)
	}
	return nil
}

// ListEmbeddingsBySource joins pain_embeddings to pain_events/posts and
// returns every embedding for a source, the Clusterer's distance-matrix
// input.
func (s *Store) ListEmbeddingsBySource(source domain.SourceType) ([]*domain.PainEmbedding, error) {
	rows, err := s.db.Query(`SELECT em.pain_event_id, em.vector, em.model, em.created_at
		FROM pain_embeddings em
		JOIN pain_events pe ON pe.id = em.pain_event_id
		JOIN posts p ON p.id = pe.post_id
		WHERE p.source_type = ?`, source)
	if err != nil {
		return nil, fmt.Errorf("list embeddings by source: %w", err)
	}
	defer rows.Close()

	var out []*domain.PainEmbedding
	for rows.Next() {
		e := &domain.PainEmbedding{}
		var createdAt string
		var vec []byte
		if err := rows.Scan(&e.PainEventID, &vec, &e.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pain embedding: %w", err)
		}
		e.Vector = decodeVector(vec)
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CachedEmbedding looks up a previously computed vector by text hash and
// model, so re-ingesting identical extraction text never pays for a second
// embedding call.
func (s *Store) CachedEmbedding(textHash, model string) ([]float32, bool, error) {
	var vec []byte
	err := s.db.QueryRow(`SELECT vector FROM embedding_cache WHERE text_hash = ? AND model = ?`,
		textHash, model).Scan(&vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup embedding cache: %w", err)
	}
	return decodeVector(vec), true, nil
}

// CacheEmbedding stores a computed vector keyed by text hash and model.
func (s *Store) CacheEmbedding(textHash, model string, vector []float32) error {
	_, err := s.db.Exec(`INSERT INTO embedding_cache (text_hash, model, vector) VALUES (?, ?, ?)
		ON CONFLICT(text_hash) DO UPDATE SET model=excluded.model, vector=excluded.vector`,
		textHash, model, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("cache embedding: %w", err)
	}
	return nil
}
