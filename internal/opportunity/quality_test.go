package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painminer/painminer/internal/llm"
)

func TestQualityScoreRewardsEasyLowCompetitionOpportunities(t *testing.T) {
	block := llm.OpportunityBlock{
		PainFrequency:         9,
		MarketSize:            8,
		MVPComplexity:         2, // low complexity = good
		CompetitionRisk:       2,
		IntegrationComplexity: 2,
	}
	score := QualityScore(block, 12)
	assert.True(t, IsViable(score))
	assert.LessOrEqual(t, score, 1.0)
}

func TestQualityScorePenalizesHardCrowdedOpportunities(t *testing.T) {
	block := llm.OpportunityBlock{
		PainFrequency:         3,
		MarketSize:            3,
		MVPComplexity:         9,
		CompetitionRisk:       9,
		IntegrationComplexity: 9,
	}
	score := QualityScore(block, 4)
	assert.False(t, IsViable(score))
}

func TestQualityScoreClusterSizeBonusCapsAtOne(t *testing.T) {
	block := llm.OpportunityBlock{
		PainFrequency:         10,
		MarketSize:            10,
		MVPComplexity:         1,
		CompetitionRisk:       1,
		IntegrationComplexity: 1,
	}
	score := QualityScore(block, 50)
	assert.Equal(t, 1.0, score)
}
