package store

import (
	"database/sql"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// UpsertPost inserts a post or, if (source_type, external_id) already
// exists, leaves the row untouched and returns its id — re-ingesting the
// same post is a no-op, not a duplicate or an error.
func (s *Store) UpsertPost(p *domain.Post) (int64, error) {
	platformData, err := toJSON(p.PlatformData)
	if err != nil {
		return 0, fmt.Errorf("marshal platform_data: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO posts
		(source_type, external_id, subreddit, title, body, url, author, score, num_comments, created_at, platform_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_type, external_id) DO NOTHING`,
		p.SourceType, p.ExternalID, p.Subreddit, p.Title, p.Body, p.URL, p.Author, p.Score, p.NumComments,
		formatTime(p.CreatedAt), platformData)
	if err != nil {
		return 0, fmt.Errorf("upsert post: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return id, nil
	}

	var id int64
	err = s.db.QueryRow(`SELECT id FROM posts WHERE source_type = ? AND external_id = ?`,
		p.SourceType, p.ExternalID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup existing post: %w", err)
	}
	return id, nil
}

// GetPost returns nil, nil when no post with that id exists.
func (s *Store) GetPost(id int64) (*domain.Post, error) {
	row := s.db.QueryRow(`SELECT id, source_type, external_id, subreddit, title, body, url, author, score,
		num_comments, created_at, fetched_at, platform_data FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListPostsWithoutFilterResult returns posts that the Signal Filter has
// not yet processed, oldest first — the Ingester→Filter handoff queue.
func (s *Store) ListPostsWithoutFilterResult(limit int) ([]*domain.Post, error) {
	rows, err := s.db.Query(`SELECT p.id, p.source_type, p.external_id, p.subreddit, p.title, p.body, p.url,
		p.author, p.score, p.num_comments, p.created_at, p.fetched_at, p.platform_data
		FROM posts p LEFT JOIN filtered_posts f ON f.post_id = p.id
		WHERE f.post_id IS NULL ORDER BY p.fetched_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unfiltered posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListPassedPosts returns posts whose Signal Filter verdict was "passed",
// whether or not they have been extracted yet. The Pain Extractor reads
// ListPassedPostsWithoutExtraction instead.
func (s *Store) ListPassedPosts(limit int) ([]*domain.Post, error) {
	rows, err := s.db.Query(`SELECT p.id, p.source_type, p.external_id, p.subreddit, p.title, p.body, p.url,
		p.author, p.score, p.num_comments, p.created_at, p.fetched_at, p.platform_data
		FROM posts p JOIN filtered_posts f ON f.post_id = p.id
		WHERE f.passed = 1 ORDER BY p.fetched_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list passed posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListPassedPostsWithoutExtraction returns filter-passed posts that have no
// pain_events row yet, oldest first — the Pain Extractor's work queue.
func (s *Store) ListPassedPostsWithoutExtraction(limit int) ([]*domain.Post, error) {
	rows, err := s.db.Query(`SELECT p.id, p.source_type, p.external_id, p.subreddit, p.title, p.body, p.url,
		p.author, p.score, p.num_comments, p.created_at, p.fetched_at, p.platform_data
		FROM posts p
		JOIN filtered_posts f ON f.post_id = p.id
		LEFT JOIN pain_events pe ON pe.post_id = p.id
		WHERE f.passed = 1 AND pe.id IS NULL
		ORDER BY p.fetched_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unextracted passed posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPost(row scannable) (*domain.Post, error) {
	p := &domain.Post{}
	var createdAt, fetchedAt string
	var platformData []byte
	if err := row.Scan(&p.ID, &p.SourceType, &p.ExternalID, &p.Subreddit, &p.Title, &p.Body, &p.URL,
		&p.Author, &p.Score, &p.NumComments, &createdAt, &fetchedAt, &platformData); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.FetchedAt = parseTime(fetchedAt)
	if err := fromJSON(platformData, &p.PlatformData); err != nil {
		return nil, fmt.Errorf("unmarshal platform_data: %w", err)
	}
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
