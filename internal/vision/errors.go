package vision

import "errors"

var (
	// ErrNoFaceDetected means no usable face was found in the frame.
	// Recoverable; the caller should prompt for a retry.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrDegenerateEmbedding means the recognition model produced a
	// zero-norm vector. Treated as an extraction failure.
	ErrDegenerateEmbedding = errors.New("degenerate embedding")

	// ErrModelUnavailable means the underlying models failed to
	// initialize. Fatal for the process; every later call fails fast
	// with the same error.
	ErrModelUnavailable = errors.New("recognition model unavailable")
)
