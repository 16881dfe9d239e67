package opportunity

import (
	"fmt"
	"strings"
	"time"

	"github.com/painminer/painminer/internal/domain"
)

// alignedQualityScore is the fixed mapper-internal quality assigned to
// every cross-source aligned opportunity (spec.md §4.7: "quality score 0.95").
const alignedQualityScore = 0.95

// alignedFixedFactor is the fixed high market/frequency score used in
// place of an LLM rubric for aligned virtual clusters.
const alignedFixedFactor = 9.0

// ruleBasedTools are the platform names the aligner's evidence quotes are
// scanned for, a small deterministic substitute for the real-cluster LLM
// tool extraction.
var ruleBasedTools = []string{"Slack", "Email", "Discord"}

// SynthesizeAligned builds an opportunity directly from an AlignedProblem,
// skipping the LLM rubric real clusters go through: cross-source
// corroboration is itself strong enough evidence to assume a large,
// frequent pain.
func SynthesizeAligned(ap *domain.AlignedProblem) *domain.Opportunity {
	tools := extractRuleBasedTools(ap)
	sourceDiversity := len(ap.ClusterIDs)

	description := fmt.Sprintf(
		"%s Reported independently across %d sources (%s), corroborating the pain across platforms.",
		ap.CoreProblem, sourceDiversity, strings.Join(ap.PlatformSources, ", "),
	)

	return &domain.Opportunity{
		AlignedProblemID: ap.ID,
		Title:            ap.CoreProblem,
		ProblemStatement: description,
		ProposedSolution: ap.WhyTheyLookDifferent,
		TargetUser:       "practitioners across " + strings.Join(ap.PlatformSources, " and "),
		MarketTier:       domain.MarketTierMainstream,
		MentionedTools:   tools,
		MarketScore:      alignedFixedFactor,
		RubricScore:      alignedFixedFactor,
		ViabilityScore:   alignedQualityScore,
		CrossSourceAligned: true,
		CreatedAt:          time.Now().UTC(),
	}
}

func extractRuleBasedTools(ap *domain.AlignedProblem) []string {
	seen := map[string]bool{}
	var out []string
	haystack := strings.ToLower(ap.CoreProblem + " " + ap.WhyTheyLookDifferent)
	for _, ev := range ap.Evidence {
		haystack += " " + strings.ToLower(ev.Quote)
	}
	for _, tool := range ruleBasedTools {
		if strings.Contains(haystack, strings.ToLower(tool)) && !seen[tool] {
			seen[tool] = true
			out = append(out, tool)
		}
	}
	return out
}
