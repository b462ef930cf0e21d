package process_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/autograde/pkg/adapters/process"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process hook tests use sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func shellHook(script string) domain.EjectFunc {
	return process.NewHook(process.HookConfig{Name: "test", Command: "sh", Args: []string{"-c", script}})
}

func TestNewHook_ExitCodes(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	ex := domain.Exercise{Name: "custom"}

	t.Run("Exit 0 Completes", func(t *testing.T) {
		ok, err := shellHook("exit 0")(ctx, ex, domain.UserState{})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Exit 1 Leaves Incomplete", func(t *testing.T) {
		ok, err := shellHook("exit 1")(ctx, ex, domain.UserState{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Other Exit Fails", func(t *testing.T) {
		_, err := shellHook("echo broken >&2; exit 3")(ctx, ex, domain.UserState{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("Missing Program Fails", func(t *testing.T) {
		hook := process.NewHook(process.HookConfig{Name: "ghost", Command: "autograde-no-such-program"})
		_, err := hook(ctx, ex, domain.UserState{})
		assert.Error(t, err)
	})
}

func TestNewHook_SnapshotInEnvironment(t *testing.T) {
	requireShell(t)
	hook := process.NewHook(process.HookConfig{
		Name:        "env",
		Command:     "sh",
		Args:        []string{"-c", `test "$AUTOGRADE_EXERCISE" = custom && test "$AUTOGRADE_COMMAND" = "make build" && test "$AUTOGRADE_OUTPUT" = ok && test "$EXTRA" = yes`},
		Environment: map[string]string{"EXTRA": "yes"},
	})

	ok, err := hook(context.Background(), domain.Exercise{Name: "custom"}, domain.UserState{
		Command: "make build",
		Output:  "ok",
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewHook_RunsInSnapshotCwd(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), nil, 0o644))

	ok, err := shellHook("test -f marker")(context.Background(), domain.Exercise{}, domain.UserState{Cwd: dir})
	require.NoError(t, err)
	assert.True(t, ok)

	base := process.NewHook(process.HookConfig{Command: "sh", Args: []string{"-c", "test -f marker"}}, process.WithBaseDir(dir))
	ok, err = base(context.Background(), domain.Exercise{}, domain.UserState{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewHook_Cancellation(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := shellHook("sleep 5")(ctx, domain.Exercise{}, domain.UserState{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterAndLoadHooks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hooks:
  - name: tests-pass
    command: make
    args: [test]
  - name: lint
    command: golangci-lint
`), 0o644))

	configs, err := process.LoadHooks(path)
	require.NoError(t, err)
	assert.Len(t, configs, 2)
	assert.Equal(t, []string{"test"}, configs["tests-pass"].Args)

	reg := hooks.NewRegistry()
	process.Register(reg, configs)
	assert.Equal(t, []string{"lint", "tests-pass"}, reg.Names())
}

func TestLoadHooks_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := process.LoadHooks(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	jsonPath := filepath.Join(dir, "hooks.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"hooks":[{"name":"a"}]}`), 0o644))
	_, err = process.LoadHooks(jsonPath)
	assert.ErrorContains(t, err, "command is required")

	dupPath := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dupPath, []byte("hooks:\n  - {name: a, command: x}\n  - {name: a, command: y}\n"), 0o644))
	_, err = process.LoadHooks(dupPath)
	assert.ErrorContains(t, err, "duplicate")
}
