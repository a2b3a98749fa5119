package face

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/observability"
	"github.com/your-org/attend/internal/vision"
)

// EmbeddingStore is the write side of the identity store. Appends must be
// atomic per identity: two concurrent enrollments for the same employee
// must not interleave partial embedding lists.
type EmbeddingStore interface {
	AppendEmbeddings(ctx context.Context, employeeID uuid.UUID, embeddings [][]float32, quality []float32) error
	ClearEmbeddings(ctx context.Context, employeeID uuid.UUID) error
}

// Sample is one captured enrollment frame.
type Sample struct {
	Image *vision.Image
}

// EnrollmentResult summarizes a committed enrollment batch.
type EnrollmentResult struct {
	EmployeeID uuid.UUID
	Samples    int // embeddings committed
	Attempted  int // frames received
	Skipped    int // frames with no detectable face
}

// Enroller orchestrates multi-sample enrollment: per-frame extraction,
// quality gating, duplicate checking against the rest of the population,
// and the atomic commit.
//
// Policy decisions, applied deterministically:
//   - frames where no face is detected are skipped and counted; they only
//     matter if the batch ends up under the minimum
//   - a quality-gate failure aborts the WHOLE batch with that sample's
//     itemized reasons (the stricter of the policies this system has run)
//   - the first valid sample is duplicate-checked against every OTHER
//     enrolled identity; a hit aborts with the conflicting identity named
type Enroller struct {
	extractor  Extractor
	matcher    *Matcher
	store      EmbeddingStore
	source     EmbeddingSource
	qualityCfg config.QualityConfig
	enrollCfg  config.EnrollmentConfig
}

func NewEnroller(
	extractor Extractor,
	matcher *Matcher,
	store EmbeddingStore,
	source EmbeddingSource,
	qualityCfg config.QualityConfig,
	enrollCfg config.EnrollmentConfig,
) *Enroller {
	return &Enroller{
		extractor:  extractor,
		matcher:    matcher,
		store:      store,
		source:     source,
		qualityCfg: qualityCfg,
		enrollCfg:  enrollCfg,
	}
}

// Enroll processes a capture batch for one employee and commits the
// resulting embeddings in a single atomic append.
func (e *Enroller) Enroll(ctx context.Context, employee models.Employee, samples []Sample) (*EnrollmentResult, error) {
	if len(samples) > e.enrollCfg.MaxSamples {
		samples = samples[:e.enrollCfg.MaxSamples]
	}

	var (
		embeddings       [][]float32
		qualities        []float32
		skipped          int
		checkedDuplicate bool
	)

	for i, sample := range samples {
		ext, err := e.extractor.Extract(sample.Image)
		if err != nil {
			if errors.Is(err, ErrNoFaceDetected) || errors.Is(err, ErrDegenerateEmbedding) {
				skipped++
				slog.Debug("enroll: sample skipped", "index", i, "error", err)
				continue
			}
			return nil, fmt.Errorf("extract sample %d: %w", i+1, err)
		}

		report := vision.CheckQuality(sample.Image, ext.BBox, e.qualityCfg)
		if !report.Valid {
			for _, issue := range report.Issues {
				observability.SamplesRejected.WithLabelValues(issue).Inc()
			}
			observability.Enrollments.WithLabelValues("quality_rejected").Inc()
			return nil, &QualityError{SampleIndex: i, Report: report}
		}

		if !checkedDuplicate {
			if dup, err := e.findDuplicate(ctx, employee.ID, ext.Embedding); err != nil {
				return nil, err
			} else if dup != nil {
				observability.Enrollments.WithLabelValues("duplicate").Inc()
				return nil, dup
			}
			checkedDuplicate = true
		}

		embeddings = append(embeddings, ext.Embedding)
		qualities = append(qualities, float32(report.Sharpness))
	}

	if len(embeddings) < e.enrollCfg.MinValidSamples {
		observability.Enrollments.WithLabelValues("insufficient").Inc()
		return nil, &InsufficientError{
			Valid:     len(embeddings),
			Attempted: len(samples),
			Required:  e.enrollCfg.MinValidSamples,
		}
	}

	if err := e.store.AppendEmbeddings(ctx, employee.ID, embeddings, qualities); err != nil {
		return nil, fmt.Errorf("append embeddings: %w", err)
	}

	observability.Enrollments.WithLabelValues("ok").Inc()
	slog.Info("enrollment committed",
		"employee", employee.EmployeeID,
		"samples", len(embeddings),
		"attempted", len(samples),
		"skipped", skipped,
	)

	return &EnrollmentResult{
		EmployeeID: employee.ID,
		Samples:    len(embeddings),
		Attempted:  len(samples),
		Skipped:    skipped,
	}, nil
}

// findDuplicate checks the query against every enrolled identity except
// the target employee. Returns a *DuplicateError on a hit.
func (e *Enroller) findDuplicate(ctx context.Context, selfID uuid.UUID, query []float32) (*DuplicateError, error) {
	identities, err := e.source.ListEnrolled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}

	for i := range identities {
		id := &identities[i]
		if id.Employee.ID == selfID {
			continue
		}
		if hit, score := e.matcher.MatchesStored(query, id.Embeddings); hit {
			return &DuplicateError{
				BadgeCode: id.Employee.EmployeeID,
				FullName:  id.Employee.FullName,
				Score:     float32(score),
			}, nil
		}
	}
	return nil, nil
}

// ClearFaceData removes every stored embedding for an employee. Embeddings
// are only ever deleted en masse, never individually.
func (e *Enroller) ClearFaceData(ctx context.Context, employeeID uuid.UUID) error {
	if err := e.store.ClearEmbeddings(ctx, employeeID); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	slog.Info("face data cleared", "employee_id", employeeID)
	return nil
}
