package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float32{0.3, -0.5, 0.8}
	scaled := []float32{0.6, -1.0, 1.6}
	assert.InDelta(t, 1.0, CosineSimilarity(a, scaled), 1e-6)
}

func TestL2Distance(t *testing.T) {
	assert.InDelta(t, 0, L2Distance([]float32{1, 2}, []float32{1, 2}), 1e-9)
	assert.InDelta(t, 5, L2Distance([]float32{0, 0}, []float32{3, 4}), 1e-9)

	// Mismatched lengths report the max unit-vector distance.
	assert.Equal(t, 2.0, L2Distance([]float32{1}, []float32{1, 2}))
}

func TestSimilarityPureCosine(t *testing.T) {
	s := NewScorer(1.0, 0.0, 3)
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, CosineSimilarity(a, b), s.Similarity(a, b), 1e-9)
}

func TestSimilarityEnsemble(t *testing.T) {
	s := NewScorer(0.6, 0.4, 3)
	a := []float32{1, 0, 0}

	// Identical unit vectors: cosine 1, l2 distance 0 -> ensemble 1.
	assert.InDelta(t, 1.0, s.Similarity(a, a), 1e-9)

	// Opposite unit vectors: cosine -1, l2 distance 2 -> 0.6*(-1) + 0.4*0.
	b := []float32{-1, 0, 0}
	assert.InDelta(t, -0.6, s.Similarity(a, b), 1e-9)
}

func TestAggregateEmptySet(t *testing.T) {
	s := NewScorer(1.0, 0.0, 3)
	assert.Equal(t, 0.0, s.Aggregate([]float32{1, 0}, nil))
	assert.Equal(t, 0.0, s.Aggregate([]float32{1, 0}, [][]float32{}))
}

func TestAggregateTopKOne(t *testing.T) {
	s := NewScorer(1.0, 0.0, 1)
	query := []float32{1, 0}
	stored := [][]float32{
		{0, 1},           // cosine 0
		{1, 0},           // cosine 1
		{0.7071, 0.7071}, // cosine ~0.707
	}
	// k=1 is the plain maximum.
	assert.InDelta(t, 1.0, s.Aggregate(query, stored), 1e-6)
}

func TestAggregateTopKMean(t *testing.T) {
	s := NewScorer(1.0, 0.0, 3)
	query := []float32{1, 0}
	stored := [][]float32{
		{1, 0},           // 1.0
		{0.7071, 0.7071}, // ~0.707
		{0, 1},           // 0.0
	}

	got := s.Aggregate(query, stored)
	assert.InDelta(t, (1.0+0.70710678+0.0)/3, got, 1e-4)
}

func TestAggregateDefaultIsMax(t *testing.T) {
	s := NewScorer(1.0, 0.0, 1)
	query := []float32{1, 0}
	stored := [][]float32{
		{0.6, 0.8},
		{1, 0},
		{0, 1},
	}
	assert.InDelta(t, 1.0, s.Aggregate(query, stored), 1e-6)
}

func TestAggregateMonotone(t *testing.T) {
	// Raising any single stored sample's similarity must never lower the
	// aggregate. Unit vectors below score cosines of 0.9, 0.1 and 0.2
	// against the query.
	query := []float32{1, 0}
	strong := []float32{0.9, 0.43589}
	weak := []float32{0.1, 0.99499}
	lessWeak := []float32{0.2, 0.97980}

	for _, k := range []int{1, 2, 3} {
		s := NewScorer(1.0, 0.0, k)
		before := s.Aggregate(query, [][]float32{strong, weak})
		after := s.Aggregate(query, [][]float32{strong, lessWeak})
		assert.GreaterOrEqual(t, after, before, "top_k=%d", k)
	}
}

func TestAggregateClipsKToStored(t *testing.T) {
	s := NewScorer(1.0, 0.0, 5)
	query := []float32{1, 0}
	stored := [][]float32{{1, 0}}
	assert.InDelta(t, 1.0, s.Aggregate(query, stored), 1e-9)
}

func TestAggregateAllZeroScores(t *testing.T) {
	s := NewScorer(1.0, 0.0, 3)
	query := []float32{1, 0}
	stored := [][]float32{{0, 1}, {0, 1}}
	assert.Equal(t, 0.0, s.Aggregate(query, stored))
}

func TestNewScorerClampsTopK(t *testing.T) {
	s := NewScorer(1.0, 0.0, 0)
	assert.Equal(t, 1, s.TopK)
}
