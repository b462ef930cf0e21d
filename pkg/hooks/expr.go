package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compile builds an eject hook from an expr-lang expression.
//
// The expression sees the snapshot as `command`, `cwd`, `output` and `env`
// (a map), the exercise name as `exercise`, and the helpers `exists(path)`,
// `isDir(path)` and `read(path)`. Relative paths resolve against the
// snapshot cwd. It must evaluate to a boolean; any other result makes the hook
// fail with domain.ErrHookNonBool.
func Compile(expression string) (domain.EjectFunc, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty hook expression")
	}

	program, err := expr.Compile(expression, expr.Env(newEnv(domain.Exercise{}, domain.UserState{})))
	if err != nil {
		return nil, fmt.Errorf("compile hook %q: %w", expression, err)
	}

	return func(ctx context.Context, exercise domain.Exercise, state domain.UserState) (bool, error) {
		return run(program, expression, newEnv(exercise, state))
	}, nil
}

func run(program *vm.Program, expression string, env map[string]any) (bool, error) {
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval hook %q: %w", expression, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %T", domain.ErrHookNonBool, expression, output)
	}
	return result, nil
}

func newEnv(exercise domain.Exercise, state domain.UserState) map[string]any {
	environ := state.Environ
	if environ == nil {
		environ = map[string]string{}
	}

	resolve := func(p string) string {
		if !filepath.IsAbs(p) {
			p = filepath.Join(state.Cwd, p)
		}
		return filepath.Clean(p)
	}

	return map[string]any{
		"exercise": exercise.Name,
		"command":  state.Command,
		"cwd":      state.Cwd,
		"output":   state.Output,
		"env":      environ,
		"exists": func(p string) bool {
			_, err := os.Stat(resolve(p))
			return err == nil
		},
		"isDir": func(p string) bool {
			info, err := os.Stat(resolve(p))
			return err == nil && info.IsDir()
		},
		"read": func(p string) string {
			data, err := os.ReadFile(resolve(p))
			if err != nil {
				return ""
			}
			return string(data)
		},
	}
}
