package store

import (
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// UpsertComment inserts a comment or no-ops if (post_id, external_id)
// already exists.
func (s *Store) UpsertComment(c *domain.Comment) error {
	_, err := s.db.Exec(`INSERT INTO comments (post_id, external_id, body, author, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id, external_id) DO NOTHING`,
		c.PostID, c.ExternalID, c.Body, c.Author, c.Score, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert comment: %w", err)
	}
	return nil
}

// ListComments returns up to limit comments for a post, highest score
// first — the Pain Extractor's comment-aware mode feeds these in, capped
// per source (20 Reddit / 10 Hacker News) by the caller's limit.
func (s *Store) ListComments(postID int64, limit int) ([]*domain.Comment, error) {
	rows, err := s.db.Query(`SELECT id, post_id, external_id, body, author, score, created_at
		FROM comments WHERE post_id = ? ORDER BY score DESC LIMIT ?`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c := &domain.Comment{}
		var createdAt string
		if err := rows.Scan(&c.ID, &c.PostID, &c.ExternalID, &c.Body, &c.Author, &c.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
