package opportunity

import "github.com/painminer/painminer/internal/llm"

// minViableQuality is the mapper-internal gate: opportunities scoring
// below this are dropped, never persisted.
const minViableQuality = 0.4

// QualityScore weights the LLM rubric's five 1-10 factors into a single
// 0-1 score, with an MVP-complexity/competition-risk/integration-complexity
// inversion since lower is better on those three, plus a cluster-size
// bonus. Capped at 1.0.
func QualityScore(o llm.OpportunityBlock, clusterSize int) float64 {
	score := 0.20*good(o.PainFrequency) +
		0.20*good(o.MarketSize) +
		0.25*inverse(o.MVPComplexity) +
		0.20*inverse(o.CompetitionRisk) +
		0.15*inverse(o.IntegrationComplexity)

	if clusterSize >= 10 {
		score += 0.10
	}
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// IsViable reports whether a quality score clears the mapper's gate.
func IsViable(score float64) bool { return score >= minViableQuality }

func good(score int) float64 { return float64(score) / 10.0 }

func inverse(score int) float64 { return float64(10-score) / 10.0 }
