package shortlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/store"
)

// Result is the full output of one Decision Shortlist pass, ready for
// Export. ReportID identifies this pass across the exported Markdown/JSON
// pair and any later reference to it (e.g. from a dashboard or a support
// ticket), independent of the timestamp the files are named with.
type Result struct {
	ReportID        string
	Entries         []domain.ShortlistEntry
	FilterReasons   []FilterReason
	TotalConsidered int
}

// Run builds one Candidate per persisted opportunity, applies the hard
// filters and selection logic in select.go, generates pitch content for
// every selection, and returns a Result ready to export.
func Run(ctx context.Context, app *llm.App, st *store.Store, cfg config.ShortlistConfig) (Result, error) {
	opportunities, err := st.ListOpportunities()
	if err != nil {
		return Result{}, fmt.Errorf("list opportunities: %w", err)
	}

	aligned, err := st.ListAlignedProblems()
	if err != nil {
		return Result{}, fmt.Errorf("list aligned problems: %w", err)
	}
	alignedClusterIDs := map[string]bool{}
	for _, ap := range aligned {
		for _, cid := range ap.ClusterIDs {
			alignedClusterIDs[cid] = true
		}
	}

	candidates := make([]Candidate, 0, len(opportunities))
	for _, o := range opportunities {
		c, ok, err := buildCandidate(st, o, alignedClusterIDs)
		if err != nil {
			return Result{}, fmt.Errorf("build candidate for opportunity %d: %w", o.ID, err)
		}
		if ok {
			candidates = append(candidates, c)
		}
	}

	filtered, reasons := HardFilter(candidates, cfg)
	entries := Select(filtered, cfg, len(filtered) > cfg.MinCandidates)

	for i := range entries {
		o := &entries[i].Opportunity
		pitch, err := llm.GeneratePitch(ctx, app, o)
		if err != nil {
			fallback := llm.FallbackPitch(o, clusterSizeOf(candidates, o))
			pitch = &fallback
		}
		entries[i].Pitch = fmt.Sprintf("%s %s %s", pitch.Problem, pitch.MVP, pitch.WhyNow)
	}

	return Result{
		ReportID:        uuid.NewString(),
		Entries:         entries,
		FilterReasons:   reasons,
		TotalConsidered: len(opportunities),
	}, nil
}

func clusterSizeOf(candidates []Candidate, o *domain.Opportunity) int {
	for _, c := range candidates {
		if c.Opportunity.ID == o.ID {
			return c.ClusterSize
		}
	}
	return 0
}

// buildCandidate resolves the cluster-derived context a Candidate needs.
// Opportunities whose backing cluster has vanished are skipped rather than
// failing the whole run.
func buildCandidate(st *store.Store, o *domain.Opportunity, alignedClusterIDs map[string]bool) (Candidate, bool, error) {
	crossSourceAligned := o.CrossSourceAligned || o.AlignedProblemID != 0

	var clusterSize, uniqueSubreddits int
	var trustLevel float64
	var painType string

	if o.ClusterID != "" {
		c, err := st.GetCluster(o.ClusterID)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("load cluster %s: %w", o.ClusterID, err)
		}
		if c == nil {
			return Candidate{}, false, nil
		}
		clusterSize = c.Size()
		uniqueSubreddits = c.UniqueSubreddits
		if alignedClusterIDs[o.ClusterID] {
			crossSourceAligned = true
		}

		events, err := st.GetPainEventsByIDs(c.PainEventIDs)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("load events for cluster %s: %w", c.ID, err)
		}
		trustLevel, painType = trustAndPainType(st, events)
	} else {
		// Aligned-virtual-cluster opportunity: already the highest trust
		// tier by construction, and has no single pain type to diversify on.
		trustLevel = config.TrustLevelScore("high")
		clusterSize = 10
		uniqueSubreddits = 3
	}

	return Candidate{
		Opportunity:        *o,
		ClusterSize:        clusterSize,
		UniqueSubreddits:   uniqueSubreddits,
		TrustLevel:         trustLevel,
		CrossSourceAligned: crossSourceAligned,
		PainType:           painType,
		Keywords:           Keywords(o.Title, o.ProblemStatement),
	}, true, nil
}

// trustAndPainType derives the cluster's trust level (the highest tier
// among its contributing subreddits) and dominant pain type (the mode
// across its events) from its pain events' originating posts.
func trustAndPainType(st *store.Store, events []*domain.PainEvent) (float64, string) {
	var trustLevel float64
	painTypeCounts := map[domain.PainType]int{}
	seenPosts := map[int64]bool{}

	for _, e := range events {
		painTypeCounts[e.PainType]++
		if seenPosts[e.PostID] {
			continue
		}
		seenPosts[e.PostID] = true
		post, err := st.GetPost(e.PostID)
		if err != nil || post == nil {
			continue
		}
		tier := config.DefaultTrustLevel(post.Subreddit)
		score := config.TrustLevelScore(tier)
		if score > trustLevel {
			trustLevel = score
		}
	}

	var dominant domain.PainType
	best := 0
	for pt, count := range painTypeCounts {
		if count > best {
			best = count
			dominant = pt
		}
	}
	return trustLevel, string(dominant)
}
