package face

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/observability"
	"github.com/your-org/attend/internal/vision"
)

// Extractor turns a frame into an embedding. Implemented by vision.Engine;
// kept as an interface so the matching logic is testable without ONNX.
type Extractor interface {
	Extract(img *vision.Image) (*vision.Extraction, error)
}

// EmbeddingSource lists enrolled identities with their stored embedding
// sets. Injected by the caller so the matching algorithm stays decoupled
// from any particular storage technology.
type EmbeddingSource interface {
	ListEnrolled(ctx context.Context) ([]models.EnrolledIdentity, error)
}

// Match is the transient positive outcome of one verification call.
type Match struct {
	Employee models.Employee
	Score    float64
	BBox     *[4]float32
}

// Matcher runs verification: extract an embedding, score it against every
// enrolled identity, apply the accept threshold. Stateless across calls;
// verification scans are read-only and tolerate a concurrently-enrolled
// identity being invisible to an in-flight call.
type Matcher struct {
	extractor Extractor
	source    EmbeddingSource
	scorer    *Scorer
	threshold float64
}

func NewMatcher(extractor Extractor, source EmbeddingSource, scorer *Scorer, threshold float64) *Matcher {
	return &Matcher{
		extractor: extractor,
		source:    source,
		scorer:    scorer,
		threshold: threshold,
	}
}

// Verify extracts the primary face's embedding from a frame and matches it
// against the enrolled population. Returns (nil, nil) both when the best
// score is below the threshold and — after logging — when no face is
// found; the two are distinguished in logs and metrics, not in the result.
func (m *Matcher) Verify(ctx context.Context, img *vision.Image) (*Match, error) {
	ext, err := m.extractor.Extract(img)
	if err != nil {
		if errors.Is(err, ErrNoFaceDetected) {
			observability.Verifications.WithLabelValues("no_face").Inc()
			slog.Info("verify: no face detected")
			return nil, nil
		}
		return nil, fmt.Errorf("extract: %w", err)
	}

	match, err := m.VerifyEmbedding(ctx, ext.Embedding)
	if err != nil {
		return nil, err
	}
	if match != nil {
		bbox := ext.BBox
		match.BBox = &bbox
	}
	return match, nil
}

// VerifyEmbedding matches a precomputed embedding against the enrolled
// population. Linear scan; the identity with the maximum aggregate score
// wins, first-seen-wins on exact ties (ties are near-impossible with
// floating-point cosine scores).
func (m *Matcher) VerifyEmbedding(ctx context.Context, query []float32) (*Match, error) {
	identities, err := m.source.ListEnrolled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}

	best := -1.0
	var matched *models.Employee

	for i := range identities {
		id := &identities[i]
		if len(id.Embeddings) == 0 {
			continue
		}
		score := m.scorer.Aggregate(query, id.Embeddings)
		if score > best {
			best = score
			matched = &id.Employee
		}
	}

	if best >= 0 {
		observability.MatchScore.Observe(best)
	}

	if matched == nil || best < m.threshold {
		observability.Verifications.WithLabelValues("below_threshold").Inc()
		slog.Info("verify: below threshold", "best_score", best, "threshold", m.threshold)
		return nil, nil
	}

	observability.Verifications.WithLabelValues("matched").Inc()
	slog.Info("verify: matched",
		"employee", matched.EmployeeID, "score", best, "threshold", m.threshold)

	return &Match{Employee: *matched, Score: best}, nil
}

// MatchesStored is the duplicate-check mode: the same aggregation and
// threshold collapsed to a boolean against a single identity's stored
// list. Used to ask "does this new sample already belong to someone"
// before enrollment.
func (m *Matcher) MatchesStored(query []float32, stored [][]float32) (bool, float64) {
	score := m.scorer.Aggregate(query, stored)
	return score >= m.threshold, score
}

// Threshold exposes the configured accept threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }
