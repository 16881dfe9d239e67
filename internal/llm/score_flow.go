package llm

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// ScoreRubric is the Viability Scorer's LLM judgment on one opportunity,
// independent of the rule-derived signals the scorer combines it with.
type ScoreRubric struct {
	PainFrequency int      `json:"pain_frequency"` // 0-10
	ClearBuyer    int      `json:"clear_buyer"`     // 0-10
	MVPBuildable  int      `json:"mvp_buildable"`   // 0-10
	CrowdedMarket int      `json:"crowded_market"`  // 0-10, 10 = empty market
	Integration   int      `json:"integration"`     // 0-10
	TotalScore    float64  `json:"total_score"`     // model's own holistic 0-10 estimate, informational only
	KillerRisks   []string `json:"killer_risks"`
}

// ScoreOpportunity asks the model to rate an opportunity against the
// viability rubric.
func ScoreOpportunity(ctx context.Context, app *App, o *domain.Opportunity) (*ScoreRubric, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before viability scoring: %w", err)
	}

	prompt := buildScorePrompt(o)
	model := app.ModelForTask("scoring", "main")

	return Trace(ctx, app, "scoreOpportunity", func() (*ScoreRubric, error) {
		result, err := GenerateJSON[ScoreRubric](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("viability scoring LLM failed: %w", err)
		}
		return result, nil
	})
}

func buildScorePrompt(o *domain.Opportunity) string {
	return fmt.Sprintf(
		`Rate this micro-product opportunity for a solo founder with no funding
and limited time. Be harsh: most ideas deserve low scores.

=== OPPORTUNITY ===
Title: %s
Problem: %s
Target user: %s
Proposed solution: %s

=== CRITICAL OUTPUT RULES ===
Return ONLY valid JSON, no prose, no markdown fences.

Return JSON:
{
  "pain_frequency": 0,
  "clear_buyer": 0,
  "mvp_buildable": 0,
  "crowded_market": 0,
  "integration": 0,
  "total_score": 0.0,
  "killer_risks": ["the biggest reason this could fail"]
}
All five named scores are integers 0-10. crowded_market is inverted: 10
means the market is EMPTY (good), 0 means it is saturated (bad).
killer_risks has 1-3 items.`,
		o.Title, o.ProblemStatement, o.TargetUser, o.ProposedSolution,
	)
}
