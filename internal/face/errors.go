package face

import (
	"errors"
	"fmt"

	"github.com/your-org/attend/internal/vision"
)

// Extraction failures surface the vision sentinels directly so callers can
// branch with errors.Is on a single set.
var (
	ErrNoFaceDetected      = vision.ErrNoFaceDetected
	ErrDegenerateEmbedding = vision.ErrDegenerateEmbedding
	ErrModelUnavailable    = vision.ErrModelUnavailable

	// ErrInsufficientSamples means the enrollment batch produced fewer
	// valid samples than the configured minimum. Recoverable; the caller
	// retries capture.
	ErrInsufficientSamples = errors.New("insufficient valid samples")

	// ErrQualityRejected means an enrollment sample failed the quality
	// gate. The whole batch is aborted.
	ErrQualityRejected = errors.New("sample quality rejected")

	// ErrDuplicateIdentity means the face being enrolled already matches
	// another enrolled employee. Terminal for the attempt; needs human
	// resolution.
	ErrDuplicateIdentity = errors.New("face already enrolled")
)

// QualityError wraps ErrQualityRejected with the failing sample's index
// and itemized reasons.
type QualityError struct {
	SampleIndex int
	Report      vision.QualityReport
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("sample %d quality rejected: %s", e.SampleIndex+1, e.Report.Message())
}

func (e *QualityError) Unwrap() error { return ErrQualityRejected }

// DuplicateError wraps ErrDuplicateIdentity and names the employee the new
// face collided with.
type DuplicateError struct {
	BadgeCode string
	FullName  string
	Score     float32
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("face already enrolled for %s (%s), score %.4f",
		e.FullName, e.BadgeCode, e.Score)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateIdentity }

// InsufficientError wraps ErrInsufficientSamples with the counts.
type InsufficientError struct {
	Valid     int
	Attempted int
	Required  int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("only %d/%d valid samples, need %d",
		e.Valid, e.Attempted, e.Required)
}

func (e *InsufficientError) Unwrap() error { return ErrInsufficientSamples }
