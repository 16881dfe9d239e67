package embed

import (
	"strings"
	"testing"

	"github.com/painminer/painminer/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestInputTextJoinsNonEmptyParts(t *testing.T) {
	e := &domain.PainEvent{Actor: "freelancer", Context: "invoicing", ProblemSummary: "manual reconciliation", Workaround: ""}
	text := InputText(e)
	assert.Equal(t, "freelancer | invoicing | manual reconciliation", text)
}

func TestInputTextTruncatesToCore(t *testing.T) {
	long := strings.Repeat("x", 3000)
	e := &domain.PainEvent{Actor: "dev", Context: "ci pipeline", ProblemSummary: long}
	text := InputText(e)
	assert.LessOrEqual(t, len(text), maxEmbeddingTextLen)
}

func TestTextHashIsStableAndDistinct(t *testing.T) {
	a := TextHash("same input")
	b := TextHash("same input")
	c := TextHash("different input")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestVerifyFlagsEmptyAndZeroVectors(t *testing.T) {
	assert.NotNil(t, Verify(1, nil))
	assert.NotNil(t, Verify(1, []float32{0, 0, 0}))
	assert.Nil(t, Verify(1, []float32{0.1, -0.3, 0.9}))
}
