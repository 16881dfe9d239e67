package llm

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

const (
	maxProblemChars = 200
	maxMVPChars     = 150
	maxWhyNowChars  = 150
)

// PitchContent is the Decision Shortlist's three bounded strings for one
// selected opportunity.
type PitchContent struct {
	Problem string `json:"problem"`
	MVP     string `json:"mvp"`
	WhyNow  string `json:"why_now"`
}

// Valid reports whether every field is non-empty and within its bound.
func (p PitchContent) Valid() bool {
	return p.Problem != "" && len(p.Problem) <= maxProblemChars &&
		p.MVP != "" && len(p.MVP) <= maxMVPChars &&
		p.WhyNow != "" && len(p.WhyNow) <= maxWhyNowChars
}

// GeneratePitch asks the small model for three bounded strings summarizing
// one shortlisted opportunity. One retry is attempted on invalid output;
// callers fall back to a template when both attempts fail.
func GeneratePitch(ctx context.Context, app *App, o *domain.Opportunity) (*PitchContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before pitch generation: %w", err)
	}

	prompt := buildPitchPrompt(o)
	model := app.ModelForTask("shortlist", "small")

	return Trace(ctx, app, "generatePitch", func() (*PitchContent, error) {
		for attempt := 0; attempt < 2; attempt++ {
			result, err := GenerateJSON[PitchContent](ctx, app, model, prompt)
			if err == nil && result.Valid() {
				return result, nil
			}
		}
		return nil, fmt.Errorf("pitch generation produced no valid content after retry")
	})
}

func buildPitchPrompt(o *domain.Opportunity) string {
	return fmt.Sprintf(
		`Write a short decision-ready pitch for this micro-product opportunity.

=== OPPORTUNITY ===
Title: %s
Problem: %s
Target user: %s
Proposed solution: %s

=== CRITICAL OUTPUT RULES ===
Return ONLY valid JSON, no prose, no markdown fences.

Return JSON:
{
  "problem": "Users in <audience> struggle with <pain> because <cause>",
  "mvp": "A minimal tool that <one core capability>",
  "why_now": "a concrete signal this is worth building now"
}
"problem" must be <= 200 characters and follow the template exactly.
"mvp" must be <= 150 characters and start with "A minimal tool that".
"why_now" must be <= 150 characters and name a concrete signal, not a
generic claim.`,
		o.Title, o.ProblemStatement, o.TargetUser, o.ProposedSolution,
	)
}

// FallbackPitch assembles a template-only pitch from fields already on the
// opportunity, used when GeneratePitch fails after its retry.
func FallbackPitch(o *domain.Opportunity, clusterSize int) PitchContent {
	return PitchContent{
		Problem: truncate(fmt.Sprintf("Users in %s struggle with %s.", o.TargetUser, o.ProblemStatement), maxProblemChars),
		MVP:     truncate(fmt.Sprintf("A minimal tool that %s", o.ProposedSolution), maxMVPChars),
		WhyNow:  truncate(fmt.Sprintf("Recurring reports across %d+ discussions with no existing fix.", clusterSize), maxWhyNowChars),
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
