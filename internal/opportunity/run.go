package opportunity

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/store"
)

// Stats reports one Opportunity Mapper pass.
type Stats struct {
	ClustersConsidered int
	AlignedConsidered  int
	Viable             int
	Dropped            int
}

// Run maps every validated real cluster and every unmapped aligned
// problem to at most one opportunity, dropping anything below the
// mapper-internal quality gate.
func Run(ctx context.Context, app *llm.App, st *store.Store) (Stats, error) {
	var stats Stats

	clusters, err := st.ListMappableClusters()
	if err != nil {
		return stats, fmt.Errorf("list mappable clusters: %w", err)
	}
	for _, c := range clusters {
		stats.ClustersConsidered++
		viable, err := mapCluster(ctx, app, st, c)
		if err != nil {
			return stats, fmt.Errorf("map cluster %s: %w", c.ID, err)
		}
		if viable {
			stats.Viable++
		} else {
			stats.Dropped++
		}
	}

	aligned, err := st.ListUnmappedAlignedProblems()
	if err != nil {
		return stats, fmt.Errorf("list unmapped aligned problems: %w", err)
	}
	for _, ap := range aligned {
		stats.AlignedConsidered++
		o := SynthesizeAligned(ap)
		if _, err := st.CreateOpportunity(o); err != nil {
			return stats, fmt.Errorf("create aligned opportunity for %s: %w", ap.APCode, err)
		}
		stats.Viable++
	}

	return stats, nil
}

func mapCluster(ctx context.Context, app *llm.App, st *store.Store, c *domain.Cluster) (bool, error) {
	events, err := st.GetPainEventsByIDs(c.PainEventIDs)
	if err != nil {
		return false, fmt.Errorf("load cluster events: %w", err)
	}

	posts := map[int64]*domain.Post{}
	for _, ev := range events {
		if _, ok := posts[ev.PostID]; ok {
			continue
		}
		p, err := st.GetPost(ev.PostID)
		if err != nil {
			return false, fmt.Errorf("load post %d: %w", ev.PostID, err)
		}
		if p != nil {
			posts[ev.PostID] = p
		}
	}

	enrichment := Enrich(events, posts)

	resp, err := llm.MapOpportunity(ctx, app, llm.MapperInput{
		ClusterID:                 c.ID,
		Subreddits:                enrichment.SubredditDistribution,
		MergedTools:               enrichment.MergedTools,
		RepresentativeProblems:    enrichment.RepresentativeProblems,
		RepresentativeWorkarounds: enrichment.RepresentativeWorkarounds,
		AvgFrequency:              enrichment.AvgFrequency,
	})
	if err != nil {
		return false, nil // absorbed: per-cluster LLM failures don't stop the stage
	}

	quality := QualityScore(resp.Opportunity, c.Size())
	if !IsViable(quality) {
		return false, nil
	}

	o := &domain.Opportunity{
		ClusterID:        c.ID,
		Title:            resp.Opportunity.Name,
		ProblemStatement: resp.MissingCapability,
		TargetUser:       resp.Opportunity.TargetUsers,
		ProposedSolution: resp.Opportunity.Description,
		MarketTier:       marketTierFor(resp.Opportunity.MarketSize),
		MentionedTools:   mergeTools(enrichment.MergedTools, resp.CurrentTools),
		ViabilityScore:   quality,
		CreatedAt:        nowUTC(),
	}
	if _, err := st.CreateOpportunity(o); err != nil {
		return false, fmt.Errorf("create opportunity: %w", err)
	}
	return true, nil
}

func marketTierFor(marketSize int) domain.MarketTier {
	switch {
	case marketSize >= 8:
		return domain.MarketTierMainstream
	case marketSize >= 5:
		return domain.MarketTierEmerging
	default:
		return domain.MarketTierNiche
	}
}

func mergeTools(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
