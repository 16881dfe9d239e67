package filter

import (
	"testing"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/stretchr/testify/assert"
)

func testConfig() config.FilterConfig {
	return config.DefaultFilter()
}

func TestEvaluateRejectsShortBody(t *testing.T) {
	p := &domain.Post{ID: 1, Title: "short", Body: "too short"}
	f := Evaluate(p, testConfig())
	assert.False(t, f.Passed)
	assert.Contains(t, f.Reasons, "below_min_length")
}

func TestEvaluateRejectsOversizedBody(t *testing.T) {
	huge := make([]byte, 25000)
	for i := range huge {
		huge[i] = 'a'
	}
	p := &domain.Post{ID: 1, Title: "long", Body: string(huge)}
	f := Evaluate(p, testConfig())
	assert.False(t, f.Passed)
	assert.Contains(t, f.Reasons, "above_max_length")
}

func TestEvaluatePassesStrongPainSignal(t *testing.T) {
	body := "Every time I have to manually copy paste data between our spreadsheet and the CRM " +
		"it is so frustrating, I am at my wit's end. There has to be a tool for this, I wish there was " +
		"something that didn't require doing this by hand every single week. It's driving me crazy and " +
		"I have wasted hours on this tedious repetitive task again today."
	p := &domain.Post{ID: 2, Title: "Sick of manual data entry", Body: body, Score: 40, NumComments: 12}
	f := Evaluate(p, testConfig())
	assert.True(t, f.Passed)
	assert.Greater(t, f.KeywordScore, 0.0)
	assert.Greater(t, f.EmotionScore, 0.0)
	assert.GreaterOrEqual(t, f.CompositeScore, testConfig().PassThreshold)
}

func TestEvaluateFailsOnNeutralPost(t *testing.T) {
	body := "Here is a detailed writeup of how our quarterly planning process works across teams, " +
		"covering roles, cadence, and the tools we use day to day to stay aligned on priorities."
	p := &domain.Post{ID: 3, Title: "Our planning process", Body: body, Score: 1}
	f := Evaluate(p, testConfig())
	assert.False(t, f.Passed)
}

func TestKeywordScoreNormalizesAcrossFamilies(t *testing.T) {
	score, reasons := keywordScore("lost my data and no backup existed", config.DefaultFilter().KeywordFamilies, nil)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	assert.NotEmpty(t, reasons)
}

func TestEmotionScoreZeroWithoutPatterns(t *testing.T) {
	assert.Equal(t, 0.0, emotionScore("a perfectly calm sentence", config.DefaultFilter().EmotionPatterns, 100))
}

func TestClip01Bounds(t *testing.T) {
	assert.Equal(t, 0.0, clip01(-5))
	assert.Equal(t, 1.0, clip01(5))
	assert.Equal(t, 0.5, clip01(0.5))
}

func TestEvaluateRejectsExclusionPattern(t *testing.T) {
	body := "Check out my channel and use code SAVE10, limited time offer, buy now before it's gone " +
		"and subscribe for more deals like this one every single week."
	p := &domain.Post{ID: 4, Title: "Big sale", Body: body, Score: 40, NumComments: 12}
	f := Evaluate(p, testConfig())
	assert.False(t, f.Passed)
	assert.Contains(t, f.Reasons[0], "excluded:")
}

func TestPatternScoreRequiresBothListsToClearMinimum(t *testing.T) {
	cfg := testConfig()
	// Only a required-list hit, no strong-signal hit: pattern term stays zero.
	score, matched, _ := patternScore("i wish there was a better way to do this", cfg, nil)
	assert.Equal(t, 0.0, score)
	assert.NotEmpty(t, matched)

	// Both lists clear their minimum.
	score, matched, _ = patternScore("i wish there was a way, this is driving me crazy", cfg, nil)
	assert.Greater(t, score, 0.0)
	assert.Len(t, matched, 2)
}

func TestClassifyPostTypePicksTechnicalAndDiscussion(t *testing.T) {
	assert.Equal(t, "technical", classifyPostType("sysadmin", 10, 2))
	assert.Equal(t, "business", classifyPostType("SaaS", 10, 2))
	assert.Equal(t, "discussion", classifyPostType("", 10, 8))
	assert.Equal(t, "general", classifyPostType("", 10, 2))
}
