package face

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/vision"
)

type fakeStore struct {
	appendedTo uuid.UUID
	appended   [][]float32
	cleared    []uuid.UUID
}

func (f *fakeStore) AppendEmbeddings(ctx context.Context, employeeID uuid.UUID, embeddings [][]float32, quality []float32) error {
	f.appendedTo = employeeID
	f.appended = append(f.appended, embeddings...)
	return nil
}

func (f *fakeStore) ClearEmbeddings(ctx context.Context, employeeID uuid.UUID) error {
	f.cleared = append(f.cleared, employeeID)
	return nil
}

// checkerboard builds a frame with mid brightness and strong edges so it
// clears the quality gate.
func checkerboard(size int) *vision.Image {
	img := vision.NewImage(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var v byte
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetBGR(x, y, v, v, v)
		}
	}
	return img
}

func darkFrame(size int) *vision.Image {
	return vision.NewImage(size, size) // zeroed pixels
}

func testQualityCfg() config.QualityConfig {
	return config.QualityConfig{
		MinBrightness: 50,
		MaxBrightness: 220,
		MinFaceArea:   100,
		MinSharpness:  100,
	}
}

func testEnrollCfg(minValid, maxSamples int) config.EnrollmentConfig {
	return config.EnrollmentConfig{MinValidSamples: minValid, MaxSamples: maxSamples}
}

func goodExtraction(emb []float32) extractResult {
	return extractResult{ext: &vision.Extraction{
		Embedding: emb,
		BBox:      [4]float32{2, 2, 30, 30},
	}}
}

func newTestEnroller(extractor Extractor, source EmbeddingSource, store EmbeddingStore, minValid, maxSamples int) *Enroller {
	matcher := NewMatcher(extractor, source, NewScorer(1.0, 0.0, 3), 0.65)
	return NewEnroller(extractor, matcher, store, source, testQualityCfg(), testEnrollCfg(minValid, maxSamples))
}

func samplesOf(imgs ...*vision.Image) []Sample {
	out := make([]Sample, len(imgs))
	for i, img := range imgs {
		out[i] = Sample{Image: img}
	}
	return out
}

func TestEnrollCommitsValidBatch(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		goodExtraction([]float32{1, 0, 0}),
	}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{}, store, 2, 20)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010", FullName: "Dina Ott"}
	result, err := enroller.Enroll(context.Background(), emp, samplesOf(
		checkerboard(32), checkerboard(32), checkerboard(32),
	))
	require.NoError(t, err)

	assert.Equal(t, emp.ID, result.EmployeeID)
	assert.Equal(t, 3, result.Samples)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, emp.ID, store.appendedTo)
	assert.Len(t, store.appended, 3)
}

func TestEnrollSkipsNoFaceFrames(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		goodExtraction([]float32{1, 0, 0}),
		{err: ErrNoFaceDetected},
	}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{}, store, 2, 20)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010"}
	result, err := enroller.Enroll(context.Background(), emp, samplesOf(
		checkerboard(32), checkerboard(32), checkerboard(32), checkerboard(32),
	))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Samples)
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 2, result.Skipped)
}

func TestEnrollInsufficientSamples(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		goodExtraction([]float32{1, 0, 0}),
		{err: ErrNoFaceDetected},
		{err: ErrNoFaceDetected},
	}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{}, store, 3, 20)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010"}
	_, err := enroller.Enroll(context.Background(), emp, samplesOf(
		checkerboard(32), checkerboard(32), checkerboard(32),
	))
	require.ErrorIs(t, err, ErrInsufficientSamples)

	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Valid)
	assert.Equal(t, 3, insufficient.Attempted)
	assert.Equal(t, 3, insufficient.Required)
	assert.Empty(t, store.appended, "nothing may be committed on failure")
}

func TestEnrollQualityFailureAbortsBatch(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		goodExtraction([]float32{1, 0, 0}),
	}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{}, store, 1, 20)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010"}
	_, err := enroller.Enroll(context.Background(), emp, samplesOf(
		checkerboard(32), darkFrame(32), checkerboard(32),
	))
	require.ErrorIs(t, err, ErrQualityRejected)

	var qerr *QualityError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, 1, qerr.SampleIndex)
	assert.Contains(t, qerr.Report.Issues, vision.IssueTooDark)
	assert.Empty(t, store.appended)
}

func TestEnrollDuplicateIdentityRejected(t *testing.T) {
	shared := []float32{1, 0, 0}
	other := identity("E099", "Taken Face", shared)

	extractor := &fakeExtractor{results: []extractResult{goodExtraction(shared)}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{identities: []models.EnrolledIdentity{other}}, store, 1, 20)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010", FullName: "Dina Ott"}
	_, err := enroller.Enroll(context.Background(), emp, samplesOf(checkerboard(32)))
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "E099", dup.BadgeCode)
	assert.Equal(t, "Taken Face", dup.FullName)
	assert.Empty(t, store.appended)
}

func TestEnrollReenrollmentNotFlaggedAsDuplicate(t *testing.T) {
	shared := []float32{1, 0, 0}
	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010", FullName: "Dina Ott"}

	self := models.EnrolledIdentity{Employee: emp, Embeddings: [][]float32{shared}}
	extractor := &fakeExtractor{results: []extractResult{goodExtraction(shared)}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{identities: []models.EnrolledIdentity{self}}, store, 1, 20)

	result, err := enroller.Enroll(context.Background(), emp, samplesOf(checkerboard(32)))
	require.NoError(t, err, "matching your own stored face is not a duplicate")
	assert.Equal(t, 1, result.Samples)
}

func TestEnrollTruncatesToMaxSamples(t *testing.T) {
	extractor := &fakeExtractor{results: []extractResult{
		goodExtraction([]float32{1, 0, 0}),
	}}
	store := &fakeStore{}
	enroller := newTestEnroller(extractor, &fakeSource{}, store, 1, 2)

	emp := models.Employee{ID: uuid.New(), EmployeeID: "E010"}
	result, err := enroller.Enroll(context.Background(), emp, samplesOf(
		checkerboard(32), checkerboard(32), checkerboard(32), checkerboard(32),
	))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempted)
	assert.Len(t, store.appended, 2)
}

func TestClearFaceData(t *testing.T) {
	store := &fakeStore{}
	enroller := newTestEnroller(&fakeExtractor{results: []extractResult{{}}}, &fakeSource{}, store, 1, 20)

	id := uuid.New()
	require.NoError(t, enroller.ClearFaceData(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, store.cleared)
}
