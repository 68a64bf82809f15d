package access

import "errors"

// Recognition failures, classified so the request boundary can map each one
// to its response and decide whether it counts against the source's lockout
// counter.
var (
	// ErrInvalidInput covers malformed images and wrong-dimension probe
	// vectors. Rejected before any state change and never counted as a
	// lockout failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFaceDetected means the extractor found zero faces in the probe.
	// Counted against the source.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrNoMatch means no enrolled identity was within the distance
	// threshold. Counted against the source.
	ErrNoMatch = errors.New("unknown face")

	// ErrLockout rejects a request from a blocked source before any
	// matching is attempted.
	ErrLockout = errors.New("too many attempts, retry later")

	// ErrStorage wraps transactional failures. The transition rolled back
	// in full; the caller gets a generic message, the detail is logged.
	ErrStorage = errors.New("storage failure")
)
