package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/registry"
)

// Verifier runs the verification pipeline.
// It holds no per-session state and is safe for concurrent use as long as
// each registry is only used by one goroutine at a time.
type Verifier struct {
	logger      *slog.Logger
	hookTimeout time.Duration
	homeDir     string
	hooks       domain.LifecycleHooks
}

// New creates a Verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		logger:      logging.NewNop(),
		hookTimeout: DefaultHookTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// RunExercise grades state against the exercise it names in reg.
//
// On success the exercise is returned; it is complete unless it has an eject
// hook that did not report completion. Failures are either wrapped
// domain.ErrExerciseNotFound or a *domain.RejectionError.
func (v *Verifier) RunExercise(ctx context.Context, reg *registry.Registry, state domain.UserState) (*domain.Exercise, error) {
	start := time.Now()

	// 1. Resolve
	ex, idx, err := reg.Find(state.ExerciseName)
	if err != nil {
		v.logger.Warn("exercise not found", "exercise", state.ExerciseName)
		return nil, err
	}

	// 2. Prerequisites, lowest index first
	for i := 0; i < idx; i++ {
		if prior := reg.At(i); !prior.Complete {
			return nil, v.reject(ctx, start, domain.Reject(ex.Name, "Required exercise not complete: %s", prior.Name))
		}
	}

	// 3. Eject hook replaces every rule check
	if ex.HasEject() {
		if v.runHook(ctx, ex, state) {
			ex.Complete = true
			v.emit(ctx, start, domain.EventVerified, ex.Name, "", true)
		} else {
			v.emit(ctx, start, domain.EventIncomplete, ex.Name, "", true)
		}
		return ex, nil
	}

	// 4. Rule checks
	c := checker{exercise: ex.Name, state: state, home: v.homeResolver(state)}
	for _, cond := range ex.Conditions() {
		if err := c.check(cond); err != nil {
			if !domain.IsRejection(err) {
				v.logger.Error("verification failed", "exercise", ex.Name, "err", err)
				return nil, err
			}
			return nil, v.reject(ctx, start, err)
		}
	}

	// 5. Complete
	ex.Complete = true
	v.logger.Debug("exercise verified", "exercise", ex.Name)
	v.emit(ctx, start, domain.EventVerified, ex.Name, "", false)
	return ex, nil
}

func (v *Verifier) reject(ctx context.Context, start time.Time, err error) error {
	var rej *domain.RejectionError
	if !errors.As(err, &rej) {
		return err
	}
	v.logger.Debug("exercise rejected", "exercise", rej.Exercise, "reason", rej.Reason)
	v.emit(ctx, start, domain.EventRejected, rej.Exercise, rej.Reason, false)
	return err
}

func (v *Verifier) emit(ctx context.Context, start time.Time, typ domain.EventType, exercise, reason string, hook bool) {
	if v.hooks.OnVerify == nil {
		return
	}
	v.hooks.OnVerify(ctx, &domain.VerificationEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Exercise:  exercise,
		Reason:    reason,
		Hook:      hook,
		Duration:  time.Since(start),
	})
}

// homeResolver returns a lazy lookup of the learner's home directory:
// the snapshot HOME, then the configured home, then the process home.
func (v *Verifier) homeResolver(state domain.UserState) func() (string, error) {
	return func() (string, error) {
		if home := state.HomeDir(); home != "" {
			return home, nil
		}
		if v.homeDir != "" {
			return v.homeDir, nil
		}
		home, err := osUserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
}
