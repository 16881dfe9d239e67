package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painminer/painminer/internal/domain"
)

func TestEnrichDerivesSubredditDistributionAndMergedTools(t *testing.T) {
	events := []*domain.PainEvent{
		{PostID: 1, MentionedTools: []string{"Zapier"}, EmotionalIntensity: 0.8, FrequencyScore: 8, ProblemSummary: "p1"},
		{PostID: 2, MentionedTools: []string{"Airtable"}, EmotionalIntensity: 0.2, FrequencyScore: 4, ProblemSummary: "p2", Workaround: "spreadsheet hack"},
	}
	posts := map[int64]*domain.Post{
		1: {ID: 1, Subreddit: "sysadmin"},
		2: {ID: 2, Subreddit: "sysadmin"},
	}

	e := Enrich(events, posts)
	assert.Equal(t, 2, e.SubredditDistribution["sysadmin"])
	assert.ElementsMatch(t, []string{"Airtable", "Zapier"}, e.MergedTools)
	assert.Equal(t, 1, e.EmotionalDistribution["high"])
	assert.Equal(t, 1, e.EmotionalDistribution["low"])
	assert.InDelta(t, 6.0, e.AvgFrequency, 1e-9)
	assert.Contains(t, e.RepresentativeWorkarounds, "spreadsheet hack")
}

func TestEnrichHandlesEmptyEvents(t *testing.T) {
	e := Enrich(nil, nil)
	assert.Equal(t, 0.0, e.AvgFrequency)
	assert.Empty(t, e.MergedTools)
}
