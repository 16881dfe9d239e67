package store

import (
	"database/sql"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// SaveCluster inserts or replaces a cluster and its membership rows in one
// transaction. Cluster id assignment ("{source}_{NN}") is the caller's
// responsibility (internal/cluster); the store just persists it.
func (s *Store) SaveCluster(c *domain.Cluster) error {
	repr, err := toJSON(c.RepresentativeProblems)
	if err != nil {
		return fmt.Errorf("marshal representative_problems: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save cluster: %w", err)
	}
	defer tx.Rollback()

	alignmentStatus := c.AlignmentStatus
	if alignmentStatus == "" {
		alignmentStatus = domain.AlignmentUnprocessed
	}

	_, err = tx.Exec(`INSERT INTO clusters
		(id, source_type, summary, representative_problems, avg_frequency, unique_authors, unique_subreddits,
		 workflow_confidence, coherence_score, aligned_problem_id, alignment_status, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			summary=excluded.summary, representative_problems=excluded.representative_problems,
			avg_frequency=excluded.avg_frequency, unique_authors=excluded.unique_authors,
			unique_subreddits=excluded.unique_subreddits, workflow_confidence=excluded.workflow_confidence,
			coherence_score=excluded.coherence_score, aligned_problem_id=excluded.aligned_problem_id,
			alignment_status=excluded.alignment_status, status=excluded.status`,
		c.ID, c.SourceType, c.Summary, repr, c.AvgFrequency, c.UniqueAuthors, c.UniqueSubreddits,
		c.WorkflowConfidence, c.CoherenceScore, c.AlignedProblemID, alignmentStatus, c.Status, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert cluster: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM cluster_members WHERE cluster_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear cluster members: %w", err)
	}
	for _, eventID := range c.PainEventIDs {
		if _, err := tx.Exec(`INSERT INTO cluster_members (cluster_id, pain_event_id) VALUES (?, ?)`,
			c.ID, eventID); err != nil {
			return fmt.Errorf("insert cluster member: %w", err)
		}
	}

	return tx.Commit()
}

// ListClustersBySource returns every cluster for a source with its
// membership populated.
func (s *Store) ListClustersBySource(source domain.SourceType) ([]*domain.Cluster, error) {
	rows, err := s.db.Query(`SELECT id, source_type, summary, representative_problems, avg_frequency,
		unique_authors, unique_subreddits, workflow_confidence, coherence_score, aligned_problem_id,
		alignment_status, status, created_at
		FROM clusters WHERE source_type = ? ORDER BY id`, source)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	clusters, err := scanClusters(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range clusters {
		ids, err := s.clusterMemberIDs(c.ID)
		if err != nil {
			return nil, err
		}
		c.PainEventIDs = ids
	}
	return clusters, nil
}

// GetCluster returns nil, nil if no cluster with that id exists.
func (s *Store) GetCluster(id string) (*domain.Cluster, error) {
	row := s.db.QueryRow(`SELECT id, source_type, summary, representative_problems, avg_frequency,
		unique_authors, unique_subreddits, workflow_confidence, coherence_score, aligned_problem_id,
		alignment_status, status, created_at FROM clusters WHERE id = ?`, id)
	c, err := scanCluster(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cluster: %w", err)
	}
	ids, err := s.clusterMemberIDs(id)
	if err != nil {
		return nil, err
	}
	c.PainEventIDs = ids
	return c, nil
}

// ListUnprocessedClusters returns every cluster whose alignment_status is
// still "unprocessed", across all sources, for the Cross-Source Aligner's
// batching pass.
func (s *Store) ListUnprocessedClusters() ([]*domain.Cluster, error) {
	rows, err := s.db.Query(`SELECT id, source_type, summary, representative_problems, avg_frequency,
		unique_authors, unique_subreddits, workflow_confidence, coherence_score, aligned_problem_id,
		alignment_status, status, created_at
		FROM clusters WHERE alignment_status = ? ORDER BY source_type, id`, domain.AlignmentUnprocessed)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed clusters: %w", err)
	}
	defer rows.Close()

	clusters, err := scanClusters(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range clusters {
		ids, err := s.clusterMemberIDs(c.ID)
		if err != nil {
			return nil, err
		}
		c.PainEventIDs = ids
	}
	return clusters, nil
}

// MarkClusterAligned records that a cluster was judged part of a
// cross-source aligned problem.
func (s *Store) MarkClusterAligned(clusterID string, alignedProblemID int64) error {
	_, err := s.db.Exec(`UPDATE clusters SET alignment_status = ?, aligned_problem_id = ? WHERE id = ?`,
		domain.AlignmentAligned, alignedProblemID, clusterID)
	if err != nil {
		return fmt.Errorf("mark cluster aligned: %w", err)
	}
	return nil
}

// MarkClusterProcessed records that a cluster was considered by the
// aligner but matched to nothing in its batch.
func (s *Store) MarkClusterProcessed(clusterID string) error {
	_, err := s.db.Exec(`UPDATE clusters SET alignment_status = ? WHERE id = ?`,
		domain.AlignmentProcessed, clusterID)
	if err != nil {
		return fmt.Errorf("mark cluster processed: %w", err)
	}
	return nil
}

// ListMappableClusters returns every validated cluster (as saved by
// internal/cluster) that has no opportunity row yet — the Opportunity
// Mapper's work queue. Aligned problems are queued separately by
// ListUnmappedAlignedProblems.
func (s *Store) ListMappableClusters() ([]*domain.Cluster, error) {
	rows, err := s.db.Query(`SELECT c.id, c.source_type, c.summary, c.representative_problems, c.avg_frequency,
		c.unique_authors, c.unique_subreddits, c.workflow_confidence, c.coherence_score, c.aligned_problem_id,
		c.alignment_status, c.status, c.created_at
		FROM clusters c
		LEFT JOIN opportunities o ON o.cluster_id = c.id
		WHERE c.status = ? AND o.id IS NULL
		ORDER BY c.id`, domain.ClusterStatusValidated)
	if err != nil {
		return nil, fmt.Errorf("list mappable clusters: %w", err)
	}
	defer rows.Close()

	clusters, err := scanClusters(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range clusters {
		ids, err := s.clusterMemberIDs(c.ID)
		if err != nil {
			return nil, err
		}
		c.PainEventIDs = ids
	}
	return clusters, nil
}

func (s *Store) clusterMemberIDs(clusterID string) ([]int64, error) {
	rows, err := s.db.Query(`SELECT pain_event_id FROM cluster_members WHERE cluster_id = ?`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("list cluster members: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cluster member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanCluster(row scannable) (*domain.Cluster, error) {
	c := &domain.Cluster{}
	var createdAt string
	var repr []byte
	if err := row.Scan(&c.ID, &c.SourceType, &c.Summary, &repr, &c.AvgFrequency, &c.UniqueAuthors,
		&c.UniqueSubreddits, &c.WorkflowConfidence, &c.CoherenceScore, &c.AlignedProblemID,
		&c.AlignmentStatus, &c.Status, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	if err := fromJSON(repr, &c.RepresentativeProblems); err != nil {
		return nil, fmt.Errorf("unmarshal representative_problems: %w", err)
	}
	return c, nil
}

func scanClusters(rows *sql.Rows) ([]*domain.Cluster, error) {
	var clusters []*domain.Cluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}
