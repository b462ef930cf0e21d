package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/autograde/internal/config"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
start_message: Welcome.
exercises:
  - name: pwd
    command_regex: pwd
    win_message: Good.
  - name: ls
    sequence: 1
    command_regex: ls
    win_message: Listed.
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exercises.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "autograde version dev")
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", writeCatalog(t, testCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "Catalogue is valid: 2 exercises")
}

func TestValidateCommand_Invalid(t *testing.T) {
	bad := `
exercises:
  - name: broken
    command_regex: "("
    env_var_conditions:
      - name: X
        state: sometimes
`
	out, err := run(t, "validate", writeCatalog(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "exercises[0]")
}

func TestCheckCommand(t *testing.T) {
	path := writeCatalog(t, testCatalog)

	_, err := run(t, "check", path, "--exercise", "ls", "--command", "ls", "--session", "check-a")
	require.Error(t, err, "ls requires pwd")

	out, err := run(t, "check", path, "--exercise", "ls", "--command", "ls", "--session", "check-b", "--assume-prior")
	require.NoError(t, err)
	assert.Contains(t, out, "Listed.")
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", writeCatalog(t, testCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "start --> pwd")
	assert.Contains(t, out, "pwd --> ls")
}

func TestOpenBackend_Encrypted(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	cfg := &config.Config{Store: config.StoreFile, StorePath: t.TempDir(), StoreKey: key}

	be, err := openBackend(cfg)
	require.NoError(t, err)
	defer be.close()

	ctx := context.Background()
	require.NoError(t, be.store.Save(ctx, "s1", &domain.Progress{SessionID: "s1", Completed: []string{"where-am-i"}}))

	// 1. Round trip through the middleware
	got, err := be.store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"where-am-i"}, got.Completed)

	// 2. The file on disk does not carry exercise names
	raw, err := os.ReadFile(filepath.Join(cfg.StorePath, "s1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "where-am-i")
}

func TestOpenBackend_BadKey(t *testing.T) {
	_, err := openBackend(&config.Config{Store: config.StoreMemory, StoreKey: "c2hvcnQ="})
	assert.Error(t, err)
}

func TestLoadHooks(t *testing.T) {
	reg, err := loadHooks(&config.Config{})
	require.NoError(t, err)
	assert.Empty(t, reg.Names())

	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hooks:\n  - name: tests-pass\n    command: make\n"), 0o644))
	reg, err = loadHooks(&config.Config{Hooks: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"tests-pass"}, reg.Names())
}
