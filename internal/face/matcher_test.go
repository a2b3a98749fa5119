package face

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/vision"
)

type fakeExtractor struct {
	results []extractResult
	calls   int
}

type extractResult struct {
	ext *vision.Extraction
	err error
}

func (f *fakeExtractor) Extract(img *vision.Image) (*vision.Extraction, error) {
	r := f.results[f.calls%len(f.results)]
	f.calls++
	return r.ext, r.err
}

type fakeSource struct {
	identities []models.EnrolledIdentity
	err        error
}

func (f *fakeSource) ListEnrolled(ctx context.Context) ([]models.EnrolledIdentity, error) {
	return f.identities, f.err
}

func identity(badge, name string, embeddings ...[]float32) models.EnrolledIdentity {
	return models.EnrolledIdentity{
		Employee: models.Employee{
			ID:         uuid.New(),
			EmployeeID: badge,
			FullName:   name,
			Active:     true,
		},
		Embeddings: embeddings,
	}
}

func TestVerifyEmbeddingMatch(t *testing.T) {
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim", []float32{1, 0, 0}),
		identity("E002", "Boris Lee", []float32{0, 1, 0}),
	}}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "E001", match.Employee.EmployeeID)
	assert.InDelta(t, 1.0, match.Score, 1e-6)
}

func TestVerifyEmbeddingBelowThreshold(t *testing.T) {
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim", []float32{0, 1, 0}),
	}}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestVerifyEmbeddingThresholdBoundary(t *testing.T) {
	// cos(49.458 deg) ~= 0.65003: just above the default threshold.
	above := []float32{0.65003, 0.7599, 0}
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim", []float32{1, 0, 0}),
	}}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), above)
	require.NoError(t, err)
	require.NotNil(t, match, "score marginally above threshold must accept")

	// Scores strictly below the threshold must reject.
	below := []float32{0.64, 0.7683, 0}
	match, err = m.VerifyEmbedding(context.Background(), below)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestVerifyEmbeddingBestIdentityWins(t *testing.T) {
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim", []float32{0.9, 0.4359, 0}),
		identity("E002", "Boris Lee", []float32{1, 0, 0}),
		identity("E003", "Clara Diaz", []float32{0.8, 0.6, 0}),
	}}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "E002", match.Employee.EmployeeID)
}

func TestVerifyEmbeddingSkipsEmptyIdentities(t *testing.T) {
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim"), // enrolled row without samples
		identity("E002", "Boris Lee", []float32{1, 0, 0}),
	}}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "E002", match.Employee.EmployeeID)
}

func TestVerifyEmbeddingEmptyPopulation(t *testing.T) {
	m := NewMatcher(nil, &fakeSource{}, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestVerifyEmbeddingSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	m := NewMatcher(nil, source, NewScorer(1.0, 0.0, 3), 0.65)

	_, err := m.VerifyEmbedding(context.Background(), []float32{1, 0, 0})
	assert.Error(t, err)
}

func TestVerifyNoFaceIsNotAnError(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		{err: ErrNoFaceDetected},
	}}
	m := NewMatcher(extractor, &fakeSource{}, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.Verify(context.Background(), vision.NewImage(4, 4))
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestVerifyCarriesBBox(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		{ext: &vision.Extraction{
			Embedding: []float32{1, 0, 0},
			BBox:      [4]float32{10, 20, 110, 140},
		}},
	}}
	source := &fakeSource{identities: []models.EnrolledIdentity{
		identity("E001", "Anna Kim", []float32{1, 0, 0}),
	}}
	m := NewMatcher(extractor, source, NewScorer(1.0, 0.0, 3), 0.65)

	match, err := m.Verify(context.Background(), vision.NewImage(4, 4))
	require.NoError(t, err)
	require.NotNil(t, match)
	require.NotNil(t, match.BBox)
	assert.Equal(t, [4]float32{10, 20, 110, 140}, *match.BBox)
}

func TestMatchesStored(t *testing.T) {
	m := NewMatcher(nil, &fakeSource{}, NewScorer(1.0, 0.0, 3), 0.65)

	hit, score := m.MatchesStored([]float32{1, 0, 0}, [][]float32{{1, 0, 0}})
	assert.True(t, hit)
	assert.InDelta(t, 1.0, score, 1e-6)

	hit, score = m.MatchesStored([]float32{1, 0, 0}, [][]float32{{0, 1, 0}})
	assert.False(t, hit)
	assert.InDelta(t, 0.0, score, 1e-6)
}
