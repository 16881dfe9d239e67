package llm

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// ClusterSummary is the Cluster Summarizer's output for an accepted
// cluster.
type ClusterSummary struct {
	CentroidSummary string   `json:"centroid_summary"`
	CommonPain      string   `json:"common_pain"`
	CommonContext   string   `json:"common_context"`
	ExampleEvents   []string `json:"example_events"`
	CoherenceScore  float64  `json:"coherence_score"`
}

// SummarizeCluster produces the centroid summary and coherence score for
// an already-validated cluster's events.
func SummarizeCluster(ctx context.Context, app *App, workflowName string, events []*domain.PainEvent) (*ClusterSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before cluster summarization: %w", err)
	}

	prompt := buildSummarizePrompt(workflowName, events)
	model := app.ModelForTask("clustering", "medium")

	return Trace(ctx, app, "summarizeCluster", func() (*ClusterSummary, error) {
		result, err := GenerateJSON[ClusterSummary](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("cluster summarization LLM failed: %w", err)
		}
		return result, nil
	})
}

func buildSummarizePrompt(workflowName string, events []*domain.PainEvent) string {
	var problems string
	for i, e := range events {
		if i >= 5 {
			break
		}
		problems += fmt.Sprintf("- %s\n", e.ProblemSummary)
	}

	return fmt.Sprintf(
		`Summarize this validated cluster of pain events, all describing the same
workflow: %q.

=== SAMPLE PROBLEMS ===
%s

=== CRITICAL OUTPUT RULES ===
Return ONLY valid JSON, no prose, no markdown fences.

Return JSON:
{
  "centroid_summary": "one or two sentences capturing the cluster's core problem",
  "common_pain": "the shared pain in a short phrase",
  "common_context": "the shared situation/workflow context",
  "example_events": ["a representative problem statement", "a second one"],
  "coherence_score": 0.0
}`,
		workflowName, problems,
	)
}
