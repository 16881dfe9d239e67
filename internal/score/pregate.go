// Package score implements the Viability Scorer: a config-driven pre-gate
// followed by an LLM rubric and rule-derived signals combined into a
// 0-10 viability score and a recommendation.
package score

import (
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// PreGate holds the minimum thresholds a cluster must clear before its
// opportunities are scored at all.
type PreGate struct {
	MinClusterSize       int
	MinUniqueAuthors     int
	MinCrossSubreddits   int
	MinAvgFrequencyScore float64
}

// Check returns "" if the cluster passes every threshold, or a reason
// string suitable for "abandon - {reason}" if it fails the first one hit.
func (g PreGate) Check(c *domain.Cluster) string {
	if c.Size() < g.MinClusterSize {
		return fmt.Sprintf("cluster size %d below minimum %d", c.Size(), g.MinClusterSize)
	}
	if c.UniqueAuthors < g.MinUniqueAuthors {
		return fmt.Sprintf("unique authors %d below minimum %d", c.UniqueAuthors, g.MinUniqueAuthors)
	}
	if c.UniqueSubreddits < g.MinCrossSubreddits {
		return fmt.Sprintf("cross-subreddit count %d below minimum %d", c.UniqueSubreddits, g.MinCrossSubreddits)
	}
	if c.AvgFrequency < g.MinAvgFrequencyScore {
		return fmt.Sprintf("average frequency score %.2f below minimum %.2f", c.AvgFrequency, g.MinAvgFrequencyScore)
	}
	return ""
}
