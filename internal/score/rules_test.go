package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painminer/painminer/internal/llm"
)

func TestMarketScoreTiers(t *testing.T) {
	assert.Equal(t, 9.0, marketScore(map[string]int{"smallbusiness": 1})) // 1.8M * 0.1% = 1800
	assert.Equal(t, 5.0, marketScore(map[string]int{"dataengineering": 1})) // 180k * 0.1% = 180
	assert.Equal(t, 5.0, marketScore(map[string]int{"unknown-sub": 1}))    // 100k default * 0.1% = 100
	assert.Equal(t, 3.0, marketScore(nil))
}

func TestCompetitionScorePassesRubricValueThrough(t *testing.T) {
	assert.Equal(t, 10.0, competitionScore(10)) // empty market, best case
	assert.Equal(t, 0.0, competitionScore(0))   // saturated market, worst case
}

func TestClusterScoreCapsAtTen(t *testing.T) {
	assert.Equal(t, 10.0, clusterScore(25))
	assert.Equal(t, 4.0, clusterScore(4))
}

func TestWorkflowScoreScalesConfidence(t *testing.T) {
	assert.Equal(t, 8.0, workflowScore(0.8))
	assert.Equal(t, 0.0, workflowScore(0))
}

func TestCombineClipsToRange(t *testing.T) {
	rubric := &llm.ScoreRubric{
		PainFrequency: 10, ClearBuyer: 10, MVPBuildable: 10, CrowdedMarket: 10, Integration: 10,
	}
	got := Combine(rubric, 9, 10, 10, 10)
	assert.InDelta(t, 9.9, got, 0.01)
	assert.LessOrEqual(t, got, 10.0)
}

func TestCombineWorkedExample(t *testing.T) {
	// pain_frequency=8*.15 + clear_buyer=7*.15 + mvp_buildable=6*.20
	// + crowded_market=6*.15 + integration=7*.10 + market=5*.10
	// + cluster=10*.10 + workflow=8*.05
	rubric := &llm.ScoreRubric{
		PainFrequency: 8, ClearBuyer: 7, MVPBuildable: 6, CrowdedMarket: 6, Integration: 7,
	}
	got := Combine(rubric, 5, 6, 10, 8)
	want := 8*0.15 + 7*0.15 + 6*0.20 + 6*0.15 + 7*0.10 + 5*0.10 + 10*0.10 + 8*0.05
	assert.InDelta(t, want, got, 0.001)
}

func TestKillerRisksFlagsLowComponentsAndLLMRisks(t *testing.T) {
	rubric := &llm.ScoreRubric{
		PainFrequency: 8, ClearBuyer: 3, MVPBuildable: 8, CrowdedMarket: 8, Integration: 8,
		KillerRisks: []string{"incumbent about to ship the same feature"},
	}
	risks := KillerRisks(rubric)
	assert.Contains(t, risks, "no clear buyer willing to pay")
	assert.Contains(t, risks, "incumbent about to ship the same feature")
	assert.Len(t, risks, 2)
}

func TestRecommendationThresholds(t *testing.T) {
	assert.Equal(t, "pursue", Recommendation(8.5))
	assert.Equal(t, "pursue - managed risk", Recommendation(7.0))
	assert.Equal(t, "modify", Recommendation(5.5))
	assert.Equal(t, "research", Recommendation(4.0))
	assert.Equal(t, "abandon", Recommendation(2.0))
}

func TestAbandonReasonFormatsVerbatim(t *testing.T) {
	assert.Equal(t, "abandon - cluster size 2 below minimum 4", AbandonReason("cluster size 2 below minimum 4"))
}
