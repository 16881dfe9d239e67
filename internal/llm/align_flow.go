package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/painminer/painminer/internal/domain"
)

// AlignmentCandidate is one element of the model's alignment array, before
// tolerant validation drops malformed entries.
type AlignmentCandidate struct {
	APCode               string                   `json:"aligned_problem_id"`
	Sources              []string                 `json:"sources"`
	CoreProblem          string                   `json:"core_problem"`
	WhyTheyLookDifferent string                   `json:"why_they_look_different"`
	Evidence             []domain.AlignedEvidence `json:"evidence"`
	ClusterNames         []string                 `json:"cluster_names"`
}

// AlignBatch asks the model to find clusters in the batch that describe
// the same underlying problem across different source platforms. Items
// the model returns with missing required fields are dropped rather than
// failing the whole batch (spec.md §4.6 step 5's tolerant-parsing rule,
// applied here at the struct level since both providers decode through
// GenerateJSON's typed unmarshal).
func AlignBatch(ctx context.Context, app *App, clustersBySource map[domain.SourceType][]*domain.Cluster) ([]AlignmentCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before cross-source alignment: %w", err)
	}

	prompt := buildAlignmentPrompt(clustersBySource)
	model := app.ModelForTask("alignment", "medium")

	candidates, err := Trace(ctx, app, "alignBatch", func() ([]AlignmentCandidate, error) {
		result, err := GenerateJSON[[]AlignmentCandidate](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("cross-source alignment LLM failed: %w", err)
		}
		return *result, nil
	})
	if err != nil {
		return nil, err
	}

	valid := make([]AlignmentCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.APCode == "" || c.CoreProblem == "" || len(c.Sources) < 2 || len(c.ClusterNames) < 2 {
			continue
		}
		valid = append(valid, c)
	}
	return valid, nil
}

func buildAlignmentPrompt(clustersBySource map[domain.SourceType][]*domain.Cluster) string {
	var b strings.Builder
	for source, clusters := range clustersBySource {
		fmt.Fprintf(&b, "=== %s CLUSTERS ===\n", strings.ToUpper(string(source)))
		for _, c := range clusters {
			fmt.Fprintf(&b, "%s: %s\n", c.ID, c.Summary)
			for _, p := range c.RepresentativeProblems {
				fmt.Fprintf(&b, "  - %s\n", p)
			}
		}
	}

	return fmt.Sprintf(
		`These clusters of pain points were mined from different community platforms.
Find groups of clusters, each from a DIFFERENT source, that describe the
same underlying problem even though the wording, tone, or maturity of the
discussion differs. Do not align clusters from the same source with each
other.

%s

=== CRITICAL OUTPUT RULES ===
Return ONLY a valid JSON array, no prose, no markdown fences. Return an
empty array if nothing aligns.

Each element:
{
  "aligned_problem_id": "AP_01",
  "sources": ["reddit", "hackernews"],
  "core_problem": "the shared underlying problem in one sentence",
  "why_they_look_different": "why surface wording differs across platforms",
  "evidence": [{"source": "reddit", "quote": "a short supporting quote"}],
  "cluster_names": ["reddit_03", "hackernews_01"]
}`,
		b.String(),
	)
}
