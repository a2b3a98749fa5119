package face

import (
	"math"
	"sort"
)

// Scorer computes similarity between normalized embeddings and aggregates
// one query against an identity's stored set.
//
// Pairwise score: an ensemble of cosine similarity and an L2-derived
// similarity (1 - distance/2, floored at 0), blended by weights that are
// expected to sum to 1. The default configuration is pure cosine
// (CosineWeight 1, L2Weight 0); 0.6/0.4 is the other blend that has been
// run in production.
//
// Aggregation policy: plain maximum by default (TopK 1), or the mean of
// the k highest pairwise scores when TopK is raised, k clipped to the
// stored count. Both forms are monotone: raising any single stored
// sample's similarity never lowers the aggregate. One policy, applied
// uniformly to verification and duplicate checks.
type Scorer struct {
	CosineWeight float64
	L2Weight     float64
	TopK         int
}

// NewScorer returns a scorer with the given ensemble weights and top-k.
// k < 1 is treated as 1.
func NewScorer(cosineWeight, l2Weight float64, topK int) *Scorer {
	if topK < 1 {
		topK = 1
	}
	return &Scorer{CosineWeight: cosineWeight, L2Weight: l2Weight, TopK: topK}
}

// Similarity scores two embeddings. Zero-norm or mismatched inputs score 0;
// this function never fails, so the matcher's scan loop stays total.
func (s *Scorer) Similarity(a, b []float32) float64 {
	cos := CosineSimilarity(a, b)
	if s.L2Weight == 0 {
		return s.CosineWeight * cos
	}

	l2Sim := 1 - L2Distance(a, b)/2
	if l2Sim < 0 {
		l2Sim = 0
	}
	return s.CosineWeight*cos + s.L2Weight*l2Sim
}

// Aggregate scores one query embedding against an identity's full stored
// set. An empty set scores 0, never an error.
func (s *Scorer) Aggregate(query []float32, stored [][]float32) float64 {
	if len(stored) == 0 {
		return 0
	}

	scores := make([]float64, 0, len(stored))
	for _, emb := range stored {
		scores = append(scores, s.Similarity(query, emb))
	}

	k := s.TopK
	if k > len(scores) {
		k = len(scores)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	top := scores[:k]

	if k == 1 {
		return top[0]
	}

	var sum float64
	for _, sc := range top {
		sum += sc
	}
	return sum / float64(k)
}

// CosineSimilarity is the dot product over the norm product, clamped to
// [-1, 1]. Zero-norm or length-mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// L2Distance is the Euclidean distance between two vectors. Mismatched
// lengths report the maximum distance between unit vectors.
func L2Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
