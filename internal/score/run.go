package score

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/store"
)

// Stats reports one Viability Scorer pass.
type Stats struct {
	Considered int
	Abandoned  int // dropped by the pre-gate, never reached the LLM rubric
	Scored     int
}

// Run reconsiders every persisted opportunity: clusters that fail the
// pre-gate are marked abandoned without an LLM call, everything else gets
// a rubric call, rule-based signals, and an updated viability score.
func Run(ctx context.Context, app *llm.App, st *store.Store, cfg config.ScoreConfig) (Stats, error) {
	var stats Stats
	gate := PreGate{
		MinClusterSize:       cfg.MinClusterSize,
		MinUniqueAuthors:     cfg.MinUniqueAuthors,
		MinCrossSubreddits:   cfg.MinCrossSubreddits,
		MinAvgFrequencyScore: cfg.MinAvgFrequencyScore,
	}

	opportunities, err := st.ListOpportunities()
	if err != nil {
		return stats, fmt.Errorf("list opportunities: %w", err)
	}

	decisions := map[string]string{} // cluster id -> abandon reason, memoized for the run

	for _, o := range opportunities {
		stats.Considered++

		signals, reason, err := resolveSignals(st, o, gate, decisions)
		if err != nil {
			return stats, fmt.Errorf("resolve signals for opportunity %d: %w", o.ID, err)
		}
		if reason != "" {
			o.Recommendation = AbandonReason(reason)
			if err := st.UpdateOpportunityScore(o.ID, o); err != nil {
				return stats, fmt.Errorf("persist abandoned opportunity %d: %w", o.ID, err)
			}
			stats.Abandoned++
			continue
		}

		rubric, err := llm.ScoreOpportunity(ctx, app, o)
		if err != nil {
			continue // absorbed: per-opportunity LLM failures don't stop the stage
		}

		o.MarketScore = marketScore(signals.subreddits)
		o.CompetitionScore = competitionScore(rubric.CrowdedMarket)
		o.ClusterScore = clusterScore(signals.clusterSize)
		o.WorkflowScore = workflowScore(signals.workflowConfidence)
		o.RubricScore = rubric.TotalScore
		o.ViabilityScore = Combine(rubric, o.MarketScore, o.CompetitionScore, o.ClusterScore, o.WorkflowScore)
		o.KillerRisks = KillerRisks(rubric)
		o.Recommendation = Recommendation(o.ViabilityScore)

		if err := st.UpdateOpportunityScore(o.ID, o); err != nil {
			return stats, fmt.Errorf("persist scored opportunity %d: %w", o.ID, err)
		}
		stats.Scored++
	}

	return stats, nil
}

// signals bundles the cluster-derived inputs the rule-based functions and
// the pre-gate both need, whether the opportunity came from a single real
// cluster or an aligned problem spanning several.
type signals struct {
	subreddits         map[string]int
	clusterSize        int
	workflowConfidence float64
}

func resolveSignals(st *store.Store, o *domain.Opportunity, gate PreGate, decisions map[string]string) (signals, string, error) {
	if o.ClusterID != "" {
		return resolveClusterSignals(st, o.ClusterID, gate, decisions)
	}
	return resolveAlignedSignals(st, o, gate)
}

func resolveClusterSignals(st *store.Store, clusterID string, gate PreGate, decisions map[string]string) (signals, string, error) {
	if reason, ok := decisions[clusterID]; ok {
		return signals{}, reason, nil
	}

	c, err := st.GetCluster(clusterID)
	if err != nil {
		return signals{}, "", fmt.Errorf("load cluster %s: %w", clusterID, err)
	}
	if c == nil {
		return signals{}, "", fmt.Errorf("cluster %s not found", clusterID)
	}

	reason := gate.Check(c)
	decisions[clusterID] = reason
	if reason != "" {
		return signals{}, reason, nil
	}

	subreddits, err := subredditDistribution(st, c)
	if err != nil {
		return signals{}, "", err
	}
	return signals{
		subreddits:         subreddits,
		clusterSize:        c.Size(),
		workflowConfidence: c.WorkflowConfidence,
	}, "", nil
}

// resolveAlignedSignals aggregates pre-gate and rule-based inputs across an
// aligned problem's constituent clusters: cross-source corroboration
// already implies the strongest possible cross_subreddit_count signal, so
// the pre-gate is evaluated against the union of their members rather than
// any single cluster.
func resolveAlignedSignals(st *store.Store, o *domain.Opportunity, gate PreGate) (signals, string, error) {
	ap, err := findAlignedProblem(st, o.AlignedProblemID)
	if err != nil {
		return signals{}, "", err
	}
	if ap == nil {
		return signals{}, "", fmt.Errorf("aligned problem %d not found", o.AlignedProblemID)
	}

	merged := &domain.Cluster{}
	subreddits := map[string]int{}
	for _, cid := range ap.ClusterIDs {
		c, err := st.GetCluster(cid)
		if err != nil {
			return signals{}, "", fmt.Errorf("load cluster %s: %w", cid, err)
		}
		if c == nil {
			continue
		}
		merged.PainEventIDs = append(merged.PainEventIDs, c.PainEventIDs...)
		merged.UniqueAuthors += c.UniqueAuthors
		merged.UniqueSubreddits += c.UniqueSubreddits
		merged.AvgFrequency += c.AvgFrequency
		merged.WorkflowConfidence += c.WorkflowConfidence

		cs, err := subredditDistribution(st, c)
		if err != nil {
			return signals{}, "", err
		}
		for sub, count := range cs {
			subreddits[sub] += count
		}
	}
	if n := len(ap.ClusterIDs); n > 0 {
		merged.AvgFrequency /= float64(n)
		merged.WorkflowConfidence /= float64(n)
	}

	reason := gate.Check(merged)
	if reason != "" {
		return signals{}, reason, nil
	}
	return signals{
		subreddits:         subreddits,
		clusterSize:        merged.Size(),
		workflowConfidence: merged.WorkflowConfidence,
	}, "", nil
}

func findAlignedProblem(st *store.Store, id int64) (*domain.AlignedProblem, error) {
	all, err := st.ListAlignedProblems()
	if err != nil {
		return nil, fmt.Errorf("list aligned problems: %w", err)
	}
	for _, ap := range all {
		if ap.ID == id {
			return ap, nil
		}
	}
	return nil, nil
}

func subredditDistribution(st *store.Store, c *domain.Cluster) (map[string]int, error) {
	events, err := st.GetPainEventsByIDs(c.PainEventIDs)
	if err != nil {
		return nil, fmt.Errorf("load events for cluster %s: %w", c.ID, err)
	}
	dist := map[string]int{}
	seen := map[int64]bool{}
	for _, e := range events {
		if seen[e.PostID] {
			continue
		}
		seen[e.PostID] = true
		p, err := st.GetPost(e.PostID)
		if err != nil {
			return nil, fmt.Errorf("load post %d: %w", e.PostID, err)
		}
		if p != nil && p.Subreddit != "" {
			dist[p.Subreddit]++
		}
	}
	return dist, nil
}
