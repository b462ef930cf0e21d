package domain

import (
	"errors"
	"fmt"
)

// ErrExerciseNotFound is returned when an exercise name is not in the registry.
// It signals a caller or configuration error, never a learner mistake.
var ErrExerciseNotFound = errors.New("exercise not found")

// ErrAllComplete is returned by views that need an active exercise when
// every exercise is already complete.
var ErrAllComplete = errors.New("all exercises complete")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrHookNonBool is returned by hooks whose evaluation produced something
// other than a boolean.
var ErrHookNonBool = errors.New("hook did not return a boolean")

// RejectionError explains why a grading attempt did not satisfy an exercise.
// Reason is shown to the learner verbatim.
type RejectionError struct {
	Exercise string
	Reason   string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

// Reject creates a RejectionError for the named exercise.
func Reject(exercise, format string, args ...any) *RejectionError {
	return &RejectionError{Exercise: exercise, Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is (or wraps) a RejectionError.
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// HookErrorKind classifies a failed eject hook evaluation.
type HookErrorKind string

const (
	HookFailed   HookErrorKind = "error"
	HookPanicked HookErrorKind = "panic"
	HookTimedOut HookErrorKind = "timeout"
	HookNonBool  HookErrorKind = "non_bool"
)

// HookError describes an eject hook that could not produce a verdict.
// The pipeline absorbs it: the exercise simply stays incomplete.
type HookError struct {
	Exercise string
	Kind     HookErrorKind
	Err      error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("eject hook for %s failed (%s): %v", e.Exercise, e.Kind, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
