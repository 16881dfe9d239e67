package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/painminer/painminer/internal/domain"
)

// ClusterValidation is the model's verdict on whether a candidate cluster's
// sampled events really describe the same underlying workflow.
type ClusterValidation struct {
	SameWorkflow bool    `json:"same_workflow"`
	WorkflowName string  `json:"workflow_name"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

const maxSampleEventsForValidation = 20

// ValidateCluster asks the model whether a candidate cluster's sampled
// events describe one coherent workflow. Large clusters are sampled down
// to maxSampleEventsForValidation before the call.
func ValidateCluster(ctx context.Context, app *App, events []*domain.PainEvent) (*ClusterValidation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before cluster validation: %w", err)
	}

	sample := events
	if len(sample) > maxSampleEventsForValidation {
		sample = sample[:maxSampleEventsForValidation]
	}

	prompt := buildValidationPrompt(sample)
	model := app.ModelForTask("clustering", "medium")

	return Trace(ctx, app, "validateCluster", func() (*ClusterValidation, error) {
		result, err := GenerateJSON[ClusterValidation](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("cluster validation LLM failed: %w", err)
		}
		return result, nil
	})
}

func buildValidationPrompt(events []*domain.PainEvent) string {
	var b strings.Builder
	for i, e := range events {
		fmt.Fprintf(&b, "%d. [%s] %s (workaround: %s)\n", i+1, e.PainType, e.ProblemSummary, e.Workaround)
	}

	return fmt.Sprintf(
		`These %d problem statements were grouped together by embedding similarity.
Judge whether they genuinely describe the same underlying workflow pain, not
just similar wording.

=== EVENTS ===
%s

=== CRITICAL OUTPUT RULES ===
Return ONLY valid JSON, no prose, no markdown fences.

Return JSON:
{
  "same_workflow": true,
  "workflow_name": "short name for the shared workflow",
  "description": "one sentence describing the shared pain",
  "confidence": 0.0,
  "reason": "why you judged it this way"
}`,
		len(events), b.String(),
	)
}
