// Package process runs allow-listed external programs as eject hooks.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/hooks"
)

// Exit codes of a hook program. Any other exit is a hook failure.
const (
	ExitComplete   = 0
	ExitIncomplete = 1
)

// waitDelay bounds how long a cancelled hook may keep its output pipes open
// through child processes.
const waitDelay = 500 * time.Millisecond

// Option configures process hooks.
type Option func(*options)

type options struct {
	baseDir string
}

// WithBaseDir sets the working directory used when a snapshot has no cwd.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// Register adds every configured program to reg under its name.
// Only programs listed in the configuration can ever run.
func Register(reg *hooks.Registry, configs map[string]HookConfig, opts ...Option) {
	for name, cfg := range configs {
		reg.Register(name, NewHook(cfg, opts...))
	}
}

// NewHook returns an eject hook that runs the configured program.
//
// The program runs in the snapshot's working directory. The snapshot is
// passed through AUTOGRADE_* environment variables, never as arguments, so
// learner input cannot inject flags. Exit 0 completes the exercise, exit 1
// leaves it incomplete.
func NewHook(cfg HookConfig, opts ...Option) domain.EjectFunc {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return func(ctx context.Context, exercise domain.Exercise, state domain.UserState) (bool, error) {
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		cmd.WaitDelay = waitDelay
		cmd.Dir = o.baseDir
		if state.Cwd != "" {
			cmd.Dir = state.Cwd
		}

		environ, err := json.Marshal(state.Environ)
		if err != nil {
			return false, fmt.Errorf("encode environment: %w", err)
		}
		env := cmd.Environ()
		for k, v := range cfg.Environment {
			env = append(env, k+"="+v)
		}
		env = append(env,
			"AUTOGRADE_EXERCISE="+exercise.Name,
			"AUTOGRADE_COMMAND="+state.Command,
			"AUTOGRADE_OUTPUT="+state.Output,
			"AUTOGRADE_CWD="+state.Cwd,
			"AUTOGRADE_ENV="+string(environ),
		)
		cmd.Env = env

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		err = cmd.Run()
		if err == nil {
			return true, nil
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == ExitIncomplete {
			return false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("hook %s failed: %w: %s", cfg.Name, err, strings.TrimSpace(stderr.String()))
	}
}
