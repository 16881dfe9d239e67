package cluster

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/store"
)

const minClusterSize = 4
const maxClustersForSummary = 20 // clusters larger than this are sampled before LLM calls

// Stats reports one source's clustering pass.
type Stats struct {
	Candidates int
	Accepted   int
	Rejected   int
	TooSmall   int
}

// Run clusters one source's embedded pain events, validating and
// summarizing every candidate cluster at or above minClusterSize, then
// persists the accepted clusters with stable "{source}_{NN}" ids.
func Run(ctx context.Context, app *llm.App, st *store.Store, source domain.SourceType, eps float64, minSamples int) (Stats, error) {
	var stats Stats

	embeddings, err := st.ListEmbeddingsBySource(source)
	if err != nil {
		return stats, fmt.Errorf("list embeddings for %s: %w", source, err)
	}
	if len(embeddings) == 0 {
		return stats, nil
	}

	points := make([]Point, len(embeddings))
	for i, e := range embeddings {
		points[i] = Point{ID: e.PainEventID, Vector: e.Vector}
	}

	labels := Scan(points, eps, minSamples)
	groups := Group(labels)
	numbering := NewNumbering(string(source))

	for _, group := range groups {
		stats.Candidates++
		if len(group) < minClusterSize {
			stats.TooSmall++
			continue
		}

		ids := make([]int64, len(group))
		for i, idx := range group {
			ids[i] = points[idx].ID
		}
		events, err := st.GetPainEventsByIDs(ids)
		if err != nil {
			return stats, fmt.Errorf("load events for candidate cluster: %w", err)
		}

		sample := events
		if len(sample) > maxClustersForSummary {
			sample = sample[:maxClustersForSummary]
		}

		validation, err := llm.ValidateCluster(ctx, app, sample)
		if err != nil {
			stats.Rejected++
			continue
		}
		if !validation.SameWorkflow {
			stats.Rejected++
			continue
		}

		summary, err := llm.SummarizeCluster(ctx, app, validation.WorkflowName, sample)
		if err != nil {
			stats.Rejected++
			continue
		}

		c, err := buildCluster(st, numbering.Next(), source, events, validation, summary)
		if err != nil {
			return stats, fmt.Errorf("build cluster: %w", err)
		}
		if err := st.SaveCluster(c); err != nil {
			return stats, fmt.Errorf("save cluster %s: %w", c.ID, err)
		}
		stats.Accepted++
	}

	return stats, nil
}

func buildCluster(st *store.Store, id string, source domain.SourceType, events []*domain.PainEvent, v *llm.ClusterValidation, s *llm.ClusterSummary) (*domain.Cluster, error) {
	ids := make([]int64, len(events))
	authors := map[string]bool{}
	subreddits := map[string]bool{}
	var freqSum float64
	for i, e := range events {
		ids[i] = e.ID
		freqSum += e.FrequencyScore

		post, err := st.GetPost(e.PostID)
		if err != nil {
			return nil, fmt.Errorf("load post %d: %w", e.PostID, err)
		}
		if post != nil && post.Author != "" {
			authors[post.Author] = true
		}
		if post != nil && post.Subreddit != "" {
			subreddits[post.Subreddit] = true
		}
	}

	avgFreq := 0.0
	if len(events) > 0 {
		avgFreq = freqSum / float64(len(events))
	}

	return &domain.Cluster{
		ID:                     id,
		SourceType:             source,
		PainEventIDs:           ids,
		Summary:                s.CentroidSummary,
		RepresentativeProblems: s.ExampleEvents,
		AvgFrequency:           avgFreq,
		UniqueAuthors:          len(authors),
		UniqueSubreddits:       len(subreddits),
		WorkflowConfidence:     v.Confidence,
		CoherenceScore:         s.CoherenceScore,
		Status:                 domain.ClusterStatusValidated,
	}, nil
}
