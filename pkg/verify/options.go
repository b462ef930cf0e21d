package verify

import (
	"log/slog"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
)

// DefaultHookTimeout is the wall-clock budget of an eject hook.
const DefaultHookTimeout = 5 * time.Second

// Option defines a functional option for configuring the Verifier.
type Option func(*Verifier)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithHookTimeout sets the wall-clock budget of eject hooks.
// Zero or a negative value disables the budget.
func WithHookTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		v.hookTimeout = d
	}
}

// WithHomeDir sets the home directory used for non-relative filesystem
// conditions when the snapshot does not carry a HOME variable.
func WithHomeDir(dir string) Option {
	return func(v *Verifier) {
		v.homeDir = dir
	}
}

// WithLifecycleHooks registers observability callbacks.
// Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(v *Verifier) {
		v.hooks = v.hooks.Merge(hooks)
	}
}
