package llm

import (
	"context"
	"fmt"
	"strings"
)

// OpportunityBlock is the five-factor scoring block the mapper's rubric
// reads, nested inside OpportunityResponse.
type OpportunityBlock struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	TargetUsers            string `json:"target_users"`
	PainFrequency          int    `json:"pain_frequency"`
	MarketSize             int    `json:"market_size"`
	MVPComplexity          int    `json:"mvp_complexity"`          // lower is better
	CompetitionRisk        int    `json:"competition_risk"`        // lower is better
	IntegrationComplexity  int    `json:"integration_complexity"`  // lower is better
}

// OpportunityResponse is the Opportunity Mapper's full LLM output for one
// real cluster.
type OpportunityResponse struct {
	CurrentTools     []string         `json:"current_tools"`
	MissingCapability string          `json:"missing_capability"`
	WhyExistingFail  string           `json:"why_existing_fail"`
	Opportunity      OpportunityBlock `json:"opportunity"`
}

// MapperInput is the enriched cluster data the prompt is built from,
// duplicated here (rather than importing internal/opportunity) to keep
// the LLM gateway free of a dependency on the stage packages it serves.
type MapperInput struct {
	ClusterID                string
	Subreddits               map[string]int
	MergedTools               []string
	RepresentativeProblems    []string
	RepresentativeWorkarounds []string
	AvgFrequency              float64
}

// MapOpportunity asks the model for a brutally practical opportunity
// assessment of one cluster's enriched pain signal.
func MapOpportunity(ctx context.Context, app *App, in MapperInput) (*OpportunityResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before opportunity mapping: %w", err)
	}

	prompt := buildMapperPrompt(in)
	model := app.ModelForTask("opportunity", "main")

	return Trace(ctx, app, "mapOpportunity", func() (*OpportunityResponse, error) {
		result, err := GenerateJSON[OpportunityResponse](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("opportunity mapping LLM failed: %w", err)
		}
		return result, nil
	})
}

func buildMapperPrompt(in MapperInput) string {
	var subs strings.Builder
	for sub, count := range in.Subreddits {
		fmt.Fprintf(&subs, "  %s: %d\n", sub, count)
	}

	return fmt.Sprintf(
		`You are a brutally practical product scout. A cluster of %d recurring
pain events was mined from community discussions. Be skeptical: most pain
points do not deserve a product. Do not be generous with scores.

=== CLUSTER %s ===
Subreddit distribution:
%s
Tools already mentioned: %s
Average frequency score: %.2f

Representative problems:
%s

Representative workarounds:
%s

=== CRITICAL OUTPUT RULES ===
Return ONLY valid JSON, no prose, no markdown fences.

Return JSON:
{
  "current_tools": ["tool a user already reaches for"],
  "missing_capability": "the specific capability none of those tools provide",
  "why_existing_fail": "why the current tools fall short",
  "opportunity": {
    "name": "short product name",
    "description": "one or two sentences",
    "target_users": "who would buy this",
    "pain_frequency": 0,
    "market_size": 0,
    "mvp_complexity": 0,
    "competition_risk": 0,
    "integration_complexity": 0
  }
}
All five opportunity scores are integers 1-10. For mvp_complexity,
competition_risk, and integration_complexity, LOWER means better (an easier
MVP, less competition, easier integration).`,
		len(in.RepresentativeProblems), in.ClusterID, subs.String(),
		strings.Join(in.MergedTools, ", "), in.AvgFrequency,
		bulletList(in.RepresentativeProblems), bulletList(in.RepresentativeWorkarounds),
	)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	return b.String()
}
