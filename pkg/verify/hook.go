package verify

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
)

type hookOutcome struct {
	complete bool
	err      error
}

// runHook invokes the exercise's eject hook inside the fault boundary and
// reports whether it completed the exercise. Failures are logged and
// reported to the lifecycle hooks, never returned.
func (v *Verifier) runHook(ctx context.Context, ex *domain.Exercise, state domain.UserState) bool {
	start := time.Now()
	complete, err := v.callHook(ctx, ex, state)
	if err == nil {
		v.logger.Debug("eject hook finished", "exercise", ex.Name, "complete", complete, "duration", time.Since(start))
		return complete
	}

	var herr *domain.HookError
	if !errors.As(err, &herr) {
		herr = &domain.HookError{Exercise: ex.Name, Kind: domain.HookFailed, Err: err}
	}
	v.logger.Error("eject hook failed", "exercise", ex.Name, "kind", herr.Kind, "err", herr.Err)
	if v.hooks.OnHookFailure != nil {
		v.hooks.OnHookFailure(ctx, &domain.HookEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHookFailure},
			Exercise:  ex.Name,
			Kind:      herr.Kind,
			Err:       herr.Err,
			Duration:  time.Since(start),
		})
	}
	return false
}

// callHook runs the hook in its own goroutine bounded by the hook timeout.
// A hook that outlives its budget is abandoned and its late result dropped.
func (v *Verifier) callHook(ctx context.Context, ex *domain.Exercise, state domain.UserState) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &domain.HookError{Exercise: ex.Name, Kind: domain.HookFailed, Err: err}
	}

	hctx, cancel := ctx, context.CancelFunc(func() {})
	if v.hookTimeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, v.hookTimeout)
	}
	defer cancel()

	// The hook sees copies; it cannot reach the registry's exercise or the
	// caller's environment map.
	exercise := *ex
	exercise.FileSystemConditions = append([]domain.FileSystemCondition(nil), ex.FileSystemConditions...)
	exercise.EnvVarConditions = append([]domain.EnvVarCondition(nil), ex.EnvVarConditions...)
	snapshot := state
	snapshot.Environ = maps.Clone(state.Environ)

	done := make(chan hookOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- hookOutcome{err: &domain.HookError{
					Exercise: ex.Name,
					Kind:     domain.HookPanicked,
					Err:      fmt.Errorf("panic: %v", r),
				}}
			}
		}()
		complete, err := exercise.Eject(hctx, exercise, snapshot)
		done <- hookOutcome{complete: complete, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return false, classifyHookError(hctx, ex.Name, out.err)
		}
		return out.complete, nil
	case <-hctx.Done():
		kind := domain.HookFailed
		if errors.Is(hctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			kind = domain.HookTimedOut
		}
		return false, &domain.HookError{Exercise: ex.Name, Kind: kind, Err: hctx.Err()}
	}
}

func classifyHookError(hctx context.Context, exercise string, err error) error {
	var herr *domain.HookError
	if errors.As(err, &herr) {
		return herr
	}
	kind := domain.HookFailed
	switch {
	case errors.Is(err, domain.ErrHookNonBool):
		kind = domain.HookNonBool
	case errors.Is(err, context.DeadlineExceeded) && hctx.Err() != nil:
		kind = domain.HookTimedOut
	}
	return &domain.HookError{Exercise: exercise, Kind: kind, Err: err}
}
