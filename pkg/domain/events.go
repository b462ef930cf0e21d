package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventVerified    EventType = "verified"
	EventRejected    EventType = "rejected"
	EventIncomplete  EventType = "incomplete"
	EventHookFailure EventType = "hook_failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// VerificationEvent reports the outcome of one grading attempt.
type VerificationEvent struct {
	EventBase
	Exercise string        `json:"exercise"`
	Reason   string        `json:"reason,omitempty"`
	Hook     bool          `json:"hook,omitempty"`
	Duration time.Duration `json:"duration"`
}

// HookEvent reports an eject hook that failed to produce a verdict.
type HookEvent struct {
	EventBase
	Exercise string        `json:"exercise"`
	Kind     HookErrorKind `json:"kind"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every callback is optional.
type LifecycleHooks struct {
	OnVerify      func(context.Context, *VerificationEvent)
	OnHookFailure func(context.Context, *HookEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnVerify: func(ctx context.Context, e *VerificationEvent) {
			if h.OnVerify != nil {
				h.OnVerify(ctx, e)
			}
			if other.OnVerify != nil {
				other.OnVerify(ctx, e)
			}
		},
		OnHookFailure: func(ctx context.Context, e *HookEvent) {
			if h.OnHookFailure != nil {
				h.OnHookFailure(ctx, e)
			}
			if other.OnHookFailure != nil {
				other.OnHookFailure(ctx, e)
			}
		},
	}
}
