// Package opportunity implements the Opportunity Mapper: it turns each
// validated cluster (real or cross-source aligned) into at most one
// micro-product opportunity, gated by a mapper-internal quality rubric.
package opportunity

import (
	"sort"

	"github.com/painminer/painminer/internal/domain"
)

const maxRepresentativeItems = 5

// Enrichment is the derived view of a cluster's events and originating
// posts that feeds the mapper's LLM prompt.
type Enrichment struct {
	SubredditDistribution     map[string]int
	MergedTools               []string
	EmotionalDistribution     map[string]int // buckets: "low", "medium", "high"
	AvgFrequency              float64
	RepresentativeProblems    []string
	RepresentativeWorkarounds []string
	TotalPainScore            float64
}

// Enrich derives the mapper's prompt inputs from a cluster's pain events
// and the posts they were extracted from. posts is keyed by PainEvent.PostID.
func Enrich(events []*domain.PainEvent, posts map[int64]*domain.Post) Enrichment {
	e := Enrichment{
		SubredditDistribution: map[string]int{},
		EmotionalDistribution: map[string]int{},
	}

	toolSet := map[string]bool{}
	var freqSum, painSum float64
	problems := map[string]bool{}
	workarounds := map[string]bool{}

	for _, ev := range events {
		if post, ok := posts[ev.PostID]; ok && post.Subreddit != "" {
			e.SubredditDistribution[post.Subreddit]++
		}
		for _, t := range ev.MentionedTools {
			toolSet[t] = true
		}
		e.EmotionalDistribution[emotionalBucket(ev.EmotionalIntensity)]++
		freqSum += ev.FrequencyScore
		painSum += ev.FrequencyScore * ev.EmotionalIntensity
		if ev.ProblemSummary != "" {
			problems[ev.ProblemSummary] = true
		}
		if ev.Workaround != "" {
			workarounds[ev.Workaround] = true
		}
	}

	if len(events) > 0 {
		e.AvgFrequency = freqSum / float64(len(events))
	}
	e.TotalPainScore = painSum
	e.MergedTools = sortedKeys(toolSet)
	e.RepresentativeProblems = capList(sortedKeys(problems), maxRepresentativeItems)
	e.RepresentativeWorkarounds = capList(sortedKeys(workarounds), maxRepresentativeItems)

	return e
}

func emotionalBucket(intensity float64) string {
	switch {
	case intensity >= 0.7:
		return "high"
	case intensity >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func capList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
