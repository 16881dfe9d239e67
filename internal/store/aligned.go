package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// CreateAlignedProblem inserts one cross-platform problem alignment the
// Cross-Source Aligner judged to describe the same underlying pain.
func (s *Store) CreateAlignedProblem(a *domain.AlignedProblem) (int64, error) {
	clusterIDs, err := toJSON(a.ClusterIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal cluster_ids: %w", err)
	}
	sources, err := toJSON(a.PlatformSources)
	if err != nil {
		return 0, fmt.Errorf("marshal platform_sources: %w", err)
	}
	evidence, err := toJSON(a.Evidence)
	if err != nil {
		return 0, fmt.Errorf("marshal evidence: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO aligned_problems
		(ap_code, cluster_ids, platform_sources, core_problem, why_they_look_different, evidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.APCode, clusterIDs, sources, a.CoreProblem, a.WhyTheyLookDifferent, evidence, formatTime(a.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("create aligned problem: %w", err)
	}
	return res.LastInsertId()
}

// ListAlignedProblems returns every alignment recorded so far, for the
// Viability Scorer and the Decision Shortlist.
func (s *Store) ListAlignedProblems() ([]*domain.AlignedProblem, error) {
	rows, err := s.db.Query(`SELECT id, ap_code, cluster_ids, platform_sources, core_problem,
		why_they_look_different, evidence, created_at FROM aligned_problems`)
	if err != nil {
		return nil, fmt.Errorf("list aligned problems: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlignedProblem
	for rows.Next() {
		a := &domain.AlignedProblem{}
		var createdAt string
		var clusterIDs, sources, evidence []byte
		if err := rows.Scan(&a.ID, &a.APCode, &clusterIDs, &sources, &a.CoreProblem,
			&a.WhyTheyLookDifferent, &evidence, &createdAt); err != nil {
			return nil, fmt.Errorf("scan aligned problem: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		if err := fromJSON(clusterIDs, &a.ClusterIDs); err != nil {
			return nil, fmt.Errorf("unmarshal cluster_ids: %w", err)
		}
		if err := fromJSON(sources, &a.PlatformSources); err != nil {
			return nil, fmt.Errorf("unmarshal platform_sources: %w", err)
		}
		if err := fromJSON(evidence, &a.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListUnmappedAlignedProblems returns every aligned problem with no
// opportunity row yet, the Opportunity Mapper's aligned-virtual-cluster
// work queue.
func (s *Store) ListUnmappedAlignedProblems() ([]*domain.AlignedProblem, error) {
	rows, err := s.db.Query(`SELECT a.id, a.ap_code, a.cluster_ids, a.platform_sources, a.core_problem,
		a.why_they_look_different, a.evidence, a.created_at
		FROM aligned_problems a
		LEFT JOIN opportunities o ON o.aligned_problem_id = a.id
		WHERE o.id IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("list unmapped aligned problems: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlignedProblem
	for rows.Next() {
		a := &domain.AlignedProblem{}
		var createdAt string
		var clusterIDs, sources, evidence []byte
		if err := rows.Scan(&a.ID, &a.APCode, &clusterIDs, &sources, &a.CoreProblem,
			&a.WhyTheyLookDifferent, &evidence, &createdAt); err != nil {
			return nil, fmt.Errorf("scan aligned problem: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		if err := fromJSON(clusterIDs, &a.ClusterIDs); err != nil {
			return nil, fmt.Errorf("unmarshal cluster_ids: %w", err)
		}
		if err := fromJSON(sources, &a.PlatformSources); err != nil {
			return nil, fmt.Errorf("unmarshal platform_sources: %w", err)
		}
		if err := fromJSON(evidence, &a.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CachedAlignment looks up a batch alignment result by its batch key,
// returning ok=false if absent or older than maxAge.
func (s *Store) CachedAlignment(batchKey string, maxAgeSeconds int64) (string, bool, error) {
	var result string
	var cachedAt string
	err := s.db.QueryRow(`SELECT result, cached_at FROM alignment_cache WHERE batch_key = ?`, batchKey).
		Scan(&result, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup alignment cache: %w", err)
	}
	age := nowFunc().Unix() - parseTime(cachedAt).Unix()
	if age > maxAgeSeconds {
		return "", false, nil
	}
	return result, true, nil
}

// CacheAlignment stores a batch alignment result JSON blob.
func (s *Store) CacheAlignment(batchKey, result string) error {
	_, err := s.db.Exec(`INSERT INTO alignment_cache (batch_key, result, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(batch_key) DO UPDATE SET result=excluded.result, cached_at=excluded.cached_at`,
		batchKey, result, formatTime(nowFunc()))
	if err != nil {
		return fmt.Errorf("cache alignment: %w", err)
	}
	return nil
}
