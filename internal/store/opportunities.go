package store

import (
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// CreateOpportunity inserts one candidate micro-product mapped from a
// cluster or an aligned problem.
func (s *Store) CreateOpportunity(o *domain.Opportunity) (int64, error) {
	tools, err := toJSON(o.MentionedTools)
	if err != nil {
		return 0, fmt.Errorf("marshal mentioned_tools: %w", err)
	}
	risks, err := toJSON(o.KillerRisks)
	if err != nil {
		return 0, fmt.Errorf("marshal killer_risks: %w", err)
	}

	var clusterID, alignedID any
	if o.ClusterID != "" {
		clusterID = o.ClusterID
	}
	if o.AlignedProblemID != 0 {
		alignedID = o.AlignedProblemID
	}

	res, err := s.db.Exec(`INSERT INTO opportunities
		(cluster_id, aligned_problem_id, title, problem_statement, target_user, proposed_solution,
		 market_tier, mentioned_tools, killer_risks, market_score, competition_score, cluster_score,
		 workflow_score, rubric_score, viability_score, recommendation, cross_source_aligned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clusterID, alignedID, o.Title, o.ProblemStatement, o.TargetUser, o.ProposedSolution,
		o.MarketTier, tools, risks, o.MarketScore, o.CompetitionScore, o.ClusterScore, o.WorkflowScore,
		o.RubricScore, o.ViabilityScore, o.Recommendation, o.CrossSourceAligned, formatTime(o.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("create opportunity: %w", err)
	}
	return res.LastInsertId()
}

// UpdateOpportunityScore persists the rule-based and rubric scores and the
// combined viability score the Viability Scorer computed.
func (s *Store) UpdateOpportunityScore(id int64, o *domain.Opportunity) error {
	risks, err := toJSON(o.KillerRisks)
	if err != nil {
		return fmt.Errorf("marshal killer_risks: %w", err)
	}
	_, err = s.db.Exec(`UPDATE opportunities SET
		market_score=?, competition_score=?, cluster_score=?, workflow_score=?, rubric_score=?,
		viability_score=?, killer_risks=?, recommendation=?, cross_source_aligned=? WHERE id=?`,
		o.MarketScore, o.CompetitionScore, o.ClusterScore, o.WorkflowScore, o.RubricScore,
		o.ViabilityScore, risks, o.Recommendation, o.CrossSourceAligned, id)
	if err != nil {
		return fmt.Errorf("update opportunity score: %w", err)
	}
	return nil
}

// ListOpportunities returns every opportunity, highest viability score
// first — the Decision Shortlist's input.
func (s *Store) ListOpportunities() ([]*domain.Opportunity, error) {
	rows, err := s.db.Query(`SELECT id, COALESCE(cluster_id, ''), COALESCE(aligned_problem_id, 0), title,
		problem_statement, target_user, proposed_solution, market_tier, mentioned_tools, killer_risks,
		market_score, competition_score, cluster_score, workflow_score, rubric_score, viability_score,
		recommendation, cross_source_aligned, created_at
		FROM opportunities ORDER BY viability_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var out []*domain.Opportunity
	for rows.Next() {
		o := &domain.Opportunity{}
		var createdAt string
		var tools, risks []byte
		if err := rows.Scan(&o.ID, &o.ClusterID, &o.AlignedProblemID, &o.Title, &o.ProblemStatement,
			&o.TargetUser, &o.ProposedSolution, &o.MarketTier, &tools, &risks, &o.MarketScore,
			&o.CompetitionScore, &o.ClusterScore, &o.WorkflowScore, &o.RubricScore, &o.ViabilityScore,
			&o.Recommendation, &o.CrossSourceAligned, &createdAt); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		o.CreatedAt = parseTime(createdAt)
		if err := fromJSON(tools, &o.MentionedTools); err != nil {
			return nil, fmt.Errorf("unmarshal mentioned_tools: %w", err)
		}
		if err := fromJSON(risks, &o.KillerRisks); err != nil {
			return nil, fmt.Errorf("unmarshal killer_risks: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
