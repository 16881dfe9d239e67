package score

import (
	"fmt"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/llm"
)

const penetrationRate = 0.001 // fraction of a subreddit's membership assumed reachable

// Weighted combination, spec-mandated.
const (
	weightPainFrequency = 0.15
	weightClearBuyer    = 0.15
	weightMVPBuildable  = 0.20
	weightCrowdedMarket = 0.15
	weightIntegration   = 0.10
	weightMarketSize    = 0.10
	weightClusterScore  = 0.10
	weightWorkflow      = 0.05

	killerRiskThreshold = 4.0

	recommendPursue        = 8.0
	recommendPursueManaged = 6.5
	recommendModify        = 5.0
	recommendResearch      = 3.5
)

// marketScore derives the Viability Scorer's market-size signal from the
// estimated audience reachable through the cluster's subreddit mix: tier
// boundaries of 9/7/5/3 for large/medium/small/niche addressable counts.
func marketScore(subredditDistribution map[string]int) float64 {
	var audience int
	for sub, count := range subredditDistribution {
		if count <= 0 {
			continue
		}
		audience += int(float64(config.DefaultSubredditAudience(sub)) * penetrationRate)
	}
	switch {
	case audience >= 1000:
		return 9
	case audience >= 300:
		return 7
	case audience >= 50:
		return 5
	default:
		return 3
	}
}

// competitionScore passes the LLM's crowded-market rating through
// unchanged: the rubric already reports 10 for an empty market, so the
// signal the formula consumes is the rubric value directly, not a further
// inversion.
func competitionScore(crowdedMarket int) float64 {
	return float64(crowdedMarket)
}

// clusterScore caps a cluster's size contribution at 10 so one runaway
// cluster can't dominate the weighted sum.
func clusterScore(size int) float64 {
	if size > 10 {
		return 10
	}
	return float64(size)
}

// workflowScore scales the Clusterer's LLM-derived workflow confidence
// (0.0-1.0) onto the same 0-10 range as the other signals.
func workflowScore(confidence float64) float64 {
	return confidence * 10
}

// Combine folds the pre-computed rule-based signals and the LLM rubric
// into a final 0-10 viability score, clipped to range.
func Combine(rubric *llm.ScoreRubric, market, competition, cluster, workflow float64) float64 {
	total := float64(rubric.PainFrequency)*weightPainFrequency +
		float64(rubric.ClearBuyer)*weightClearBuyer +
		float64(rubric.MVPBuildable)*weightMVPBuildable +
		competition*weightCrowdedMarket +
		float64(rubric.Integration)*weightIntegration +
		market*weightMarketSize +
		cluster*weightClusterScore +
		workflow*weightWorkflow

	if total > 10 {
		total = 10
	}
	if total < 0 {
		total = 0
	}
	return total
}

// KillerRisks names every rubric component that scored below
// killerRiskThreshold, prefixed with a human-readable label, plus
// whatever risks the LLM itself named.
func KillerRisks(rubric *llm.ScoreRubric) []string {
	var risks []string
	if float64(rubric.PainFrequency) < killerRiskThreshold {
		risks = append(risks, "pain isn't frequent enough to sustain demand")
	}
	if float64(rubric.ClearBuyer) < killerRiskThreshold {
		risks = append(risks, "no clear buyer willing to pay")
	}
	if float64(rubric.MVPBuildable) < killerRiskThreshold {
		risks = append(risks, "MVP is too complex to build quickly")
	}
	if float64(rubric.CrowdedMarket) < killerRiskThreshold {
		risks = append(risks, "market is already crowded with incumbents")
	}
	if float64(rubric.Integration) < killerRiskThreshold {
		risks = append(risks, "integration burden is too high")
	}
	risks = append(risks, rubric.KillerRisks...)
	return dedupe(risks)
}

// Recommendation maps a final viability score onto the pipeline's
// five-level decision vocabulary.
func Recommendation(finalScore float64) string {
	switch {
	case finalScore >= recommendPursue:
		return "pursue"
	case finalScore >= recommendPursueManaged:
		return "pursue - managed risk"
	case finalScore >= recommendModify:
		return "modify"
	case finalScore >= recommendResearch:
		return "research"
	default:
		return "abandon"
	}
}

// AbandonReason formats the pre-gate rejection recommendation the spec
// requires verbatim: "abandon - {reason}".
func AbandonReason(reason string) string {
	return fmt.Sprintf("abandon - %s", reason)
}

func dedupe(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
