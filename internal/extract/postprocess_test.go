package extract

import (
	"testing"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichDropsLowConfidence(t *testing.T) {
	e := Enrich(1, ExtractedEvidence{Event: llm.ExtractedPainEvent{
		Problem:    "We manually reconcile invoices every week in a spreadsheet",
		Confidence: 0.1,
	}})
	assert.Nil(t, e)
}

func TestEnrichDropsShortProblem(t *testing.T) {
	e := Enrich(1, ExtractedEvidence{Event: llm.ExtractedPainEvent{
		Problem:    "too slow",
		Confidence: 0.9,
	}})
	assert.Nil(t, e)
}

func TestEnrichDropsBlocklistedProblem(t *testing.T) {
	e := Enrich(1, ExtractedEvidence{Event: llm.ExtractedPainEvent{
		Problem:    "It doesn't work",
		Confidence: 0.9,
	}})
	assert.Nil(t, e)
}

func TestEnrichClassifiesAndExtendsTools(t *testing.T) {
	e := Enrich(1, ExtractedEvidence{Event: llm.ExtractedPainEvent{
		Problem:           "Every week I manually copy data from our Google Sheets tracker into the CRM",
		Context:           "Weekly sales reporting",
		CurrentWorkaround: "Export to Excel then paste in",
		Frequency:         "weekly",
		EmotionalSignal:   "frustrated",
		MentionedTools:    []string{"hubspot"},
		Confidence:        0.8,
		EvidenceSources:   []string{"post"},
	}})
	require.NotNil(t, e)
	assert.Equal(t, domain.PainTypeManualWorkflow, e.PainType)
	assert.Contains(t, e.MentionedTools, "hubspot")
	assert.Contains(t, e.MentionedTools, "google sheets")
	assert.Equal(t, 8.0, e.FrequencyScore)
	assert.Equal(t, 0.6, e.EmotionalIntensity)
	assert.Equal(t, 1, e.CommentsUsed)
}

func TestFrequencyScoreDefaultsToMid(t *testing.T) {
	assert.Equal(t, 5.0, frequencyScore("occasionally, not sure"))
}
