package store

import (
	"database/sql"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// CreatePainEvent inserts a pain event extracted from a post and returns
// its id. A post may yield zero, one, or several pain events.
func (s *Store) CreatePainEvent(e *domain.PainEvent) (int64, error) {
	tools, err := toJSON(e.MentionedTools)
	if err != nil {
		return 0, fmt.Errorf("marshal mentioned_tools: %w", err)
	}
	res, err := s.db.Exec(`INSERT INTO pain_events
		(post_id, pain_type, actor, problem_summary, context, emotional_intensity, frequency_score,
		 mentioned_tools, workaround, confidence, comments_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PostID, e.PainType, e.Actor, e.ProblemSummary, e.Context, e.EmotionalIntensity, e.FrequencyScore,
		tools, e.Workaround, e.Confidence, e.CommentsUsed, formatTime(e.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("create pain event: %w", err)
	}
	return res.LastInsertId()
}

// ListPainEventsBySource returns every pain event whose post belongs to
// source, oldest first — the Embedder's per-source input set.
func (s *Store) ListPainEventsBySource(source domain.SourceType) ([]*domain.PainEvent, error) {
	rows, err := s.db.Query(`SELECT pe.id, pe.post_id, pe.pain_type, pe.actor, pe.problem_summary, pe.context,
		pe.emotional_intensity, pe.frequency_score, pe.mentioned_tools, pe.workaround, pe.confidence,
		pe.comments_used, pe.created_at
		FROM pain_events pe JOIN posts p ON p.id = pe.post_id
		WHERE p.source_type = ? ORDER BY pe.created_at ASC`, source)
	if err != nil {
		return nil, fmt.Errorf("list pain events by source: %w", err)
	}
	defer rows.Close()
	return scanPainEvents(rows)
}

// GetPainEventsByIDs returns pain events for the given ids, preserving no
// particular order — callers that need a specific order re-sort.
func (s *Store) GetPainEventsByIDs(ids []int64) ([]*domain.PainEvent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, post_id, pain_type, actor, problem_summary, context, emotional_intensity,
		frequency_score, mentioned_tools, workaround, confidence, comments_used, created_at
		FROM pain_events WHERE id IN (%s)`, string(placeholders))
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get pain events by ids: %w", err)
	}
	defer rows.Close()
	return scanPainEvents(rows)
}

func scanPainEvents(rows *sql.Rows) ([]*domain.PainEvent, error) {
	var events []*domain.PainEvent
	for rows.Next() {
		e := &domain.PainEvent{}
		var createdAt string
		var tools []byte
		if err := rows.Scan(&e.ID, &e.PostID, &e.PainType, &e.Actor, &e.ProblemSummary, &e.Context,
			&e.EmotionalIntensity, &e.FrequencyScore, &tools, &e.Workaround, &e.Confidence,
			&e.CommentsUsed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pain event: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		if err := fromJSON(tools, &e.MentionedTools); err != nil {
			return nil, fmt.Errorf("unmarshal mentioned_tools: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
