package shortlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
)

func TestHardFilterAppliesThresholdsInOrder(t *testing.T) {
	cfg := config.ShortlistConfig{MinTotalScore: 7.0, MinClusterSize: 6, MinTrustLevel: 0.7}
	candidates := []Candidate{
		{Opportunity: domain.Opportunity{ID: 1, ViabilityScore: 8.0}, ClusterSize: 10, TrustLevel: 0.9},
		{Opportunity: domain.Opportunity{ID: 2, ViabilityScore: 3.0}, ClusterSize: 10, TrustLevel: 0.9}, // fails score
		{Opportunity: domain.Opportunity{ID: 3, ViabilityScore: 8.0}, ClusterSize: 2, TrustLevel: 0.9},  // fails size
		{Opportunity: domain.Opportunity{ID: 4, ViabilityScore: 8.0}, ClusterSize: 10, TrustLevel: 0.5}, // fails trust
	}
	out, reasons := HardFilter(candidates, cfg)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].Opportunity.ID)
	assert.Equal(t, 1, reasons[0].Dropped)
	assert.Equal(t, 1, reasons[1].Dropped)
	assert.Equal(t, 1, reasons[2].Dropped)
}

func TestHardFilterRespectsIgnoreList(t *testing.T) {
	cfg := config.ShortlistConfig{MinTotalScore: 0, MinClusterSize: 0, MinTrustLevel: 0, IgnoreList: []string{"reddit_01"}}
	candidates := []Candidate{
		{Opportunity: domain.Opportunity{ID: 1, ClusterID: "reddit_01", ViabilityScore: 9}, ClusterSize: 10, TrustLevel: 0.9},
		{Opportunity: domain.Opportunity{ID: 2, ClusterID: "reddit_02", ViabilityScore: 9}, ClusterSize: 10, TrustLevel: 0.9},
	}
	out, reasons := HardFilter(candidates, cfg)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].Opportunity.ID)
	assert.Equal(t, 1, reasons[3].Dropped)
}

func TestValidationBoostLevels(t *testing.T) {
	assert.Equal(t, boostCrossSourceAligned, ValidationBoost(Candidate{CrossSourceAligned: true}))
	assert.Equal(t, boostLargeMultiSub, ValidationBoost(Candidate{ClusterSize: 12, UniqueSubreddits: 3}))
	assert.Equal(t, boostModerateMultiSub, ValidationBoost(Candidate{ClusterSize: 8, UniqueSubreddits: 2}))
	assert.Equal(t, boostNone, ValidationBoost(Candidate{ClusterSize: 5, UniqueSubreddits: 1}))
}

func TestFinalScoreClampsAndScalesLogarithmically(t *testing.T) {
	c := Candidate{Opportunity: domain.Opportunity{ViabilityScore: 9}, ClusterSize: 10, TrustLevel: 0.9}
	score := FinalScore(c, 0)
	// 9*1.0 + log10(10)*2.5 + 0.9*1.5 = 9 + 2.5 + 1.35 = 12.85, clamped to 10
	assert.Equal(t, 10.0, score)

	low := Candidate{Opportunity: domain.Opportunity{ViabilityScore: 1}, ClusterSize: 1, TrustLevel: 0.1}
	assert.InDelta(t, 1*1.0+0+0.1*1.5, FinalScore(low, 0), 0.01)
}

func TestSelectRanksDescendingAndCapsAtMax(t *testing.T) {
	cfg := config.ShortlistConfig{MaxCandidates: 2}
	candidates := []Candidate{
		{Opportunity: domain.Opportunity{ID: 1, ViabilityScore: 5}, ClusterSize: 5, TrustLevel: 0.5},
		{Opportunity: domain.Opportunity{ID: 2, ViabilityScore: 9}, ClusterSize: 10, TrustLevel: 0.9},
		{Opportunity: domain.Opportunity{ID: 3, ViabilityScore: 7}, ClusterSize: 8, TrustLevel: 0.7},
	}
	entries := Select(candidates, cfg, false)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].Opportunity.ID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestKeywordOverlap(t *testing.T) {
	a := Keywords("Spreadsheet sync tool", "manually exporting data every week")
	b := Keywords("Spreadsheet sync app", "manually exporting data nightly")
	assert.Greater(t, keywordOverlap(a, b), 0.5)
}

func TestMostRestrictiveNamesHighestDropCount(t *testing.T) {
	reasons := []FilterReason{
		{Name: "total_score", Dropped: 2},
		{Name: "cluster_size", Dropped: 9},
		{Name: "trust_level", Dropped: 1},
	}
	assert.Contains(t, mostRestrictive(reasons), "cluster_size")
}
