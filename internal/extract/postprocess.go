// Package extract turns the Pain Extractor's raw model output into
// validated, enriched domain.PainEvent rows.
package extract

import (
	"strings"
	"time"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
)

const (
	minProblemLen = 10
	maxProblemLen = 1000
	minConfidence = 0.3
)

// genericBlocklist rejects pain events too vague to act on.
var genericBlocklist = map[string]bool{
	"it's slow":         true,
	"it doesn't work":   true,
	"bad ux":            true,
	"the ui is bad":     true,
	"needs improvement": true,
}

// commonTools extends mentioned_tools with any vocabulary hit the model
// missed, scanning problem+context+workaround.
var commonTools = []string{
	"excel", "google sheets", "airtable", "notion", "slack", "zapier",
	"jira", "trello", "asana", "hubspot", "salesforce", "quickbooks",
	"stripe", "shopify", "wordpress", "github", "gitlab", "aws", "zoom",
}

// painTypeKeywords maps a PainType to the terms that trigger it, checked
// in the order below so earlier families win ties.
var painTypeKeywords = []struct {
	painType domain.PainType
	terms    []string
}{
	{domain.PainTypeDataLoss, []string{"lost", "corrupt", "backup", "wiped", "disappeared"}},
	{domain.PainTypeIntegrationPain, []string{"integrat", "api", "sync", "webhook", "export"}},
	{domain.PainTypePricingFrustration, []string{"price", "expensive", "cost", "subscription", "billing"}},
	{domain.PainTypeToolGap, []string{"no tool", "doesn't exist", "wish there was", "looking for"}},
	{domain.PainTypeManualWorkflow, []string{"manual", "by hand", "copy paste", "spreadsheet", "repetitive"}},
}

// frequencyScores maps a frequency phrase to a 1-10 score; unmatched
// phrases default to 5.
var frequencyScores = map[string]float64{
	"daily":     10,
	"often":     7,
	"weekly":    8,
	"monthly":   6,
	"sometimes": 4,
	"rarely":    2,
}

// Enrich validates and classifies one raw extraction, returning nil if the
// event fails validation (caller should skip it, not store it).
func Enrich(postID int64, raw ExtractedEvidence) *domain.PainEvent {
	problem := strings.TrimSpace(raw.Event.Problem)
	if problem == "" || raw.Event.Confidence < minConfidence {
		return nil
	}
	if len(problem) < minProblemLen || len(problem) > maxProblemLen {
		return nil
	}
	if genericBlocklist[strings.ToLower(problem)] {
		return nil
	}

	e := &domain.PainEvent{
		PostID:             postID,
		Actor:              raw.Event.Actor,
		ProblemSummary:     problem,
		Context:            raw.Event.Context,
		Workaround:         raw.Event.CurrentWorkaround,
		Confidence:         raw.Event.Confidence,
		MentionedTools:     extendTools(raw.Event.MentionedTools, problem+" "+raw.Event.Context+" "+raw.Event.CurrentWorkaround),
		FrequencyScore:      frequencyScore(raw.Event.Frequency),
		EmotionalIntensity: emotionalIntensity(raw.Event.EmotionalSignal),
		CommentsUsed:       len(raw.Event.EvidenceSources),
		CreatedAt:          time.Now().UTC(),
	}
	e.PainType = classify(problem + " " + raw.Event.Context)
	return e
}

// ExtractedEvidence pairs a raw model event with nothing extra today but
// exists so enrichment can grow inputs (e.g. post metadata) without
// changing Enrich's signature shape.
type ExtractedEvidence struct {
	Event llm.ExtractedPainEvent
}

func classify(text string) domain.PainType {
	lower := strings.ToLower(text)
	for _, family := range painTypeKeywords {
		for _, term := range family.terms {
			if strings.Contains(lower, term) {
				return family.painType
			}
		}
	}
	return domain.PainTypeOther
}

func extendTools(found []string, text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool, len(found))
	for _, t := range found {
		seen[strings.ToLower(t)] = true
	}
	tools := append([]string{}, found...)
	for _, tool := range commonTools {
		if !seen[tool] && strings.Contains(lower, tool) {
			tools = append(tools, tool)
			seen[tool] = true
		}
	}
	return tools
}

func frequencyScore(freqText string) float64 {
	lower := strings.ToLower(freqText)
	for phrase, score := range frequencyScores {
		if strings.Contains(lower, phrase) {
			return score
		}
	}
	return 5
}

// emotionalIntensity maps a short emotion phrase to a coarse 0-1 signal.
// Real intensity scoring happens upstream in the Signal Filter; this is a
// secondary, LLM-reported signal used by the Opportunity Mapper's
// aggregate emotional distribution.
func emotionalIntensity(phrase string) float64 {
	lower := strings.ToLower(phrase)
	switch {
	case strings.Contains(lower, "furious"), strings.Contains(lower, "exasperated"), strings.Contains(lower, "at my wit"):
		return 0.9
	case strings.Contains(lower, "frustrat"), strings.Contains(lower, "annoy"):
		return 0.6
	case strings.Contains(lower, "mild"), strings.Contains(lower, "resigned"):
		return 0.3
	default:
		return 0.5
	}
}
