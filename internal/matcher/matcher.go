package matcher

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidProbe is returned when a probe vector has the wrong
// dimensionality. It is rejected before any matching happens.
var ErrInvalidProbe = errors.New("invalid probe vector")

// Candidate is one enrolled identity as seen by the matcher.
type Candidate struct {
	ID        int64
	Name      string
	Embedding []float32
}

// MatchResult is the transient outcome of matching a probe. Known is false
// for an unknown probe; the other fields are only meaningful when Known.
type MatchResult struct {
	SubjectID int64
	Name      string
	Distance  float64
	Known     bool
}

// EuclideanDistance computes the Euclidean distance between two vectors.
// Mismatched or empty vectors yield +Inf so they can never win a match.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Best runs the single-pass nearest-match selection. The running best starts
// at threshold; a candidate is adopted only when its distance is strictly
// less than the running best, so a candidate at equal distance to an already
// adopted one never overrides it (first seen at the winning distance wins).
// An empty candidate set yields Unknown, not an error.
func Best(probe []float32, candidates []Candidate, threshold float64) MatchResult {
	best := MatchResult{Distance: threshold}
	for _, c := range candidates {
		d := EuclideanDistance(probe, c.Embedding)
		if d < best.Distance {
			best = MatchResult{SubjectID: c.ID, Name: c.Name, Distance: d, Known: true}
		}
	}
	if !best.Known {
		return MatchResult{}
	}
	return best
}

// Matcher matches probe vectors against the identity snapshot.
type Matcher struct {
	snapshot  *Snapshot
	threshold float64
	dim       int
}

// New creates a matcher over a snapshot with a distance threshold and the
// expected probe dimensionality.
func New(snapshot *Snapshot, threshold float64, dim int) *Matcher {
	return &Matcher{snapshot: snapshot, threshold: threshold, dim: dim}
}

// Match validates the probe and selects the best candidate from the current
// snapshot.
func (m *Matcher) Match(probe []float32) (MatchResult, error) {
	if len(probe) != m.dim {
		return MatchResult{}, fmt.Errorf("%w: got %d dimensions, want %d", ErrInvalidProbe, len(probe), m.dim)
	}
	return Best(probe, m.snapshot.Candidates(), m.threshold), nil
}
