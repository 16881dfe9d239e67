package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanFindsTwoDenseGroupsAndNoise(t *testing.T) {
	points := []Point{
		{ID: 1, Vector: []float32{1, 0, 0}},
		{ID: 2, Vector: []float32{0.98, 0.05, 0}},
		{ID: 3, Vector: []float32{0.97, 0.08, 0}},
		{ID: 4, Vector: []float32{0, 1, 0}},
		{ID: 5, Vector: []float32{0.02, 0.98, 0}},
		{ID: 6, Vector: []float32{0.05, 0.97, 0}},
		{ID: 7, Vector: []float32{0, 0, 1}}, // far from both groups, noise
	}
	labels := Scan(points, 0.05, 3)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
	assert.Equal(t, noise, labels[6])
}

func TestCosineDistanceIdenticalIsZero(t *testing.T) {
	d := cosineDistance([]float32{1, 2, 3}, []float32{1, 2, 3})
	assert.InDelta(t, 0, d, 1e-9)
}

func TestCosineDistanceOrthogonalIsOne(t *testing.T) {
	d := cosineDistance([]float32{1, 0}, []float32{0, 1})
	assert.InDelta(t, 1, d, 1e-9)
}

func TestGroupSkipsNoiseAndPreservesOrder(t *testing.T) {
	groups := Group([]int{0, 1, -1, 0, 1, 1})
	assert.Equal(t, [][]int{{0, 3}, {1, 4, 5}}, groups)
}

func TestNumberingIsMonotonicAndZeroPadded(t *testing.T) {
	n := NewNumbering("reddit")
	assert.Equal(t, "reddit_01", n.Next())
	assert.Equal(t, "reddit_02", n.Next())
}
