// Package access orchestrates a recognition request end to end: lockout
// check, probe normalization, embedding extraction, nearest-match selection
// and the session state transition, plus the best-effort actuator signal.
package access

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jjaoguedes/facegate/internal/actuator"
	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/jjaoguedes/facegate/internal/imaging"
	"github.com/jjaoguedes/facegate/internal/lockout"
	"github.com/jjaoguedes/facegate/internal/matcher"
)

// Recognition outcome statuses as reported to clients.
const (
	StatusEntry = "entrada"
	StatusExit  = "saida"
)

// Extractor computes face embeddings for an image, one per detected face.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([][]float32, error)
}

// Outcome is the result of a successful recognition.
type Outcome struct {
	Status    string
	SubjectID int64
	Name      string
	// FacesDetected is how many faces the extractor found in the probe.
	FacesDetected int
	// Duration is the length of the stay, set only on exit.
	Duration time.Duration
}

// Service runs the recognition pipeline against one storage backend.
type Service struct {
	store     database.Store
	guard     *lockout.Guard
	snapshot  *matcher.Snapshot
	matcher   *matcher.Matcher
	extractor Extractor
	actuator  actuator.Signaler
	minDwell  time.Duration
	opTimeout time.Duration
	dim       int
	now       func() time.Time
}

// NewService wires the recognition pipeline. The actuator may be
// actuator.Noop when no signaling channel is configured.
func NewService(store database.Store, ext Extractor, act actuator.Signaler, cfg *config.Config) *Service {
	snapshot := matcher.NewSnapshot(store.Identities())
	return &Service{
		store:     store,
		guard:     lockout.NewGuard(store.Counters(), cfg.Lockout),
		snapshot:  snapshot,
		matcher:   matcher.New(snapshot, cfg.Recognition.Threshold, cfg.Recognition.EmbeddingDim),
		extractor: ext,
		actuator:  act,
		minDwell:  cfg.Recognition.MinDwell,
		opTimeout: cfg.Database.OpTimeout,
		dim:       cfg.Recognition.EmbeddingDim,
		now:       time.Now,
	}
}

// ReloadSnapshot re-reads all enrolled identities and atomically publishes
// the fresh snapshot. Returns the number of loaded identities.
func (s *Service) ReloadSnapshot(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.snapshot.Reload(ctx)
}

// Recognize processes one probe image from a request source. On a positive
// match it drives the session state machine and reports the resulting entry
// or exit; recognition failures are counted against the source.
func (s *Service) Recognize(ctx context.Context, source string, image []byte) (Outcome, error) {
	now := s.now()

	blocked, err := s.isBlocked(ctx, source, now)
	if err != nil {
		return Outcome{}, err
	}
	if blocked {
		return Outcome{}, ErrLockout
	}

	probe, err := imaging.NormalizeProbe(image)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	embeddings, err := s.extractor.Extract(ctx, probe)
	if err != nil {
		return Outcome{}, fmt.Errorf("extract embeddings: %w", err)
	}
	if len(embeddings) == 0 {
		return Outcome{}, s.countFailure(ctx, source, now, ErrNoFaceDetected)
	}

	match, err := s.bestMatch(embeddings)
	if err != nil {
		return Outcome{}, err
	}
	if !match.Known {
		log.Printf("probe from %s: Desconhecido (%d faces)", source, len(embeddings))
		return Outcome{}, s.countFailure(ctx, source, now, ErrNoMatch)
	}

	transition, err := s.transition(ctx, match.SubjectID, now)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{SubjectID: match.SubjectID, Name: match.Name, FacesDetected: len(embeddings)}
	switch transition.Kind {
	case database.TransitionExit:
		outcome.Status = StatusExit
		outcome.Duration = transition.Stay
		s.signal(actuator.CommandExit)
	case database.TransitionEntry:
		outcome.Status = StatusEntry
		s.signal(actuator.CommandEntry)
	default: // bounce: the open session is untouched, report it as-is
		outcome.Status = StatusEntry
	}
	return outcome, nil
}

// bestMatch matches every detected face and keeps the positive match with
// the lowest distance, so a bystander in the frame cannot shadow the subject
// closest to an enrolled identity.
func (s *Service) bestMatch(embeddings [][]float32) (matcher.MatchResult, error) {
	var best matcher.MatchResult
	for _, embedding := range embeddings {
		result, err := s.matcher.Match(embedding)
		if err != nil {
			return matcher.MatchResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if result.Known && (!best.Known || result.Distance < best.Distance) {
			best = result
		}
	}
	return best, nil
}

// transition drives the session state machine inside a storage transaction.
// A concurrent entry for the same subject surfaces as ErrOpenSessionExists;
// one retry re-reads the now-open session and resolves to a bounce or exit.
func (s *Service) transition(ctx context.Context, subjectID int64, now time.Time) (database.Transition, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	transition, err := s.store.Sessions().Transition(ctx, subjectID, now, s.minDwell)
	if errors.Is(err, database.ErrOpenSessionExists) {
		transition, err = s.store.Sessions().Transition(ctx, subjectID, now, s.minDwell)
	}
	if err != nil {
		log.Printf("session transition for subject %d failed: %v", subjectID, err)
		return database.Transition{}, fmt.Errorf("%w: session transition", ErrStorage)
	}
	return transition, nil
}

func (s *Service) isBlocked(ctx context.Context, source string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	blocked, err := s.guard.IsBlocked(ctx, source, now)
	if err != nil {
		log.Printf("lockout check for %q failed: %v", source, err)
		return false, fmt.Errorf("%w: lockout check", ErrStorage)
	}
	return blocked, nil
}

// countFailure records a recognition failure against source and returns
// cause, or ErrLockout when this failure was the one that crossed the
// threshold.
func (s *Service) countFailure(ctx context.Context, source string, now time.Time, cause error) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.guard.RecordFailure(opCtx, source, now); err != nil {
		log.Printf("recording failure for %q failed: %v", source, err)
		return fmt.Errorf("%w: failure counter", ErrStorage)
	}

	blocked, err := s.isBlocked(ctx, source, now)
	if err != nil {
		return err
	}
	if blocked {
		return ErrLockout
	}
	return cause
}

// signal notifies the actuator without blocking the request. The committed
// transition stands whether or not the signal arrives.
func (s *Service) signal(cmd actuator.Command) {
	go func() {
		if err := s.actuator.Signal(context.Background(), cmd); err != nil {
			log.Printf("actuator signal %s failed: %v", cmd, err)
		}
	}()
}
