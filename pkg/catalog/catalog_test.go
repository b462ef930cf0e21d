package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellBasics = `
start_message: Welcome!
end_message: All done.
exercises:
  - name: mkdir
    command_regex: 'mkdir\s+'
    filesystem_conditions:
      - path: project
        relative: true
        directory: true
    hint: Use mkdir
    win_message: 'You ran {{.Command}}'
  - name: touch
    command_regex: touch
    filesystem_conditions:
      - path: project/README.md
        relative: true
        content_regex: '# '
      - path: scratch
        relative: true
        state: absent
  - name: export
    sequence: 10
    env_var_conditions:
      - name: EDITOR
        value_regex: vim
      - name: DEBUG
        state: absent
  - name: custom
    sequence: 11
    eject: always
  - name: expression
    sequence: 12
    eject_expr: 'command startsWith "git"'
`

func alwaysHooks() *hooks.Registry {
	r := hooks.NewRegistry()
	r.Register("always", func(ctx context.Context, ex domain.Exercise, st domain.UserState) (bool, error) {
		return true, nil
	})
	return r
}

func TestLoad(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(shellBasics), alwaysHooks())
	require.NoError(t, err)

	assert.Equal(t, "Welcome!", cat.StartMessage)
	assert.Equal(t, "All done.", cat.EndMessage)
	require.Len(t, cat.Exercises, 5)

	mkdir := cat.Exercises[0]
	assert.Equal(t, "mkdir", mkdir.Name)
	assert.Equal(t, 0, mkdir.Sequence)
	assert.Equal(t, `mkdir\s+`, mkdir.CommandRegex.String())
	require.Len(t, mkdir.FileSystemConditions, 1)
	assert.True(t, mkdir.FileSystemConditions[0].Directory())
	assert.True(t, mkdir.FileSystemConditions[0].Relative)
	assert.Equal(t, "Use mkdir", mkdir.Hint)

	touch := cat.Exercises[1]
	assert.Equal(t, 1, touch.Sequence)
	require.Len(t, touch.FileSystemConditions, 2)
	assert.Equal(t, domain.Absent, touch.FileSystemConditions[1].State())

	export := cat.Exercises[2]
	assert.Equal(t, 10, export.Sequence)
	require.Len(t, export.EnvVarConditions, 2)
	assert.Equal(t, domain.Present, export.EnvVarConditions[0].State)
	assert.Equal(t, domain.Absent, export.EnvVarConditions[1].State)

	assert.True(t, cat.Exercises[3].HasEject())
	assert.True(t, cat.Exercises[4].HasEject())

	reg, err := cat.NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())
}

func TestNewRegistry_IsFreshPerCall(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(shellBasics), alwaysHooks())
	require.NoError(t, err)

	a, err := cat.NewRegistry()
	require.NoError(t, err)
	b, err := cat.NewRegistry()
	require.NoError(t, err)

	require.NoError(t, a.MarkComplete("mkdir"))
	assert.Equal(t, []string{"mkdir"}, a.Completed())
	assert.Empty(t, b.Completed())
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := catalog.Load(strings.NewReader("exercises:\n  - name: a\n    comand_regex: ls\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comand_regex")
}

func TestLoad_Empty(t *testing.T) {
	_, err := catalog.Load(strings.NewReader(""), nil)
	assert.Error(t, err)
}

func TestLoad_ValidationCollectsEverything(t *testing.T) {
	doc := `
exercises:
  - command_regex: '('
  - name: dup
  - name: dup
    filesystem_conditions:
      - path: x
        state: gone
      - path: y
        state: absent
        content: nope
      - path: z
        directory: true
        content_regex: abc
      - relative: true
    env_var_conditions:
      - name: A
        state: absent
        value_regex: x
      - state: present
  - name: hooked
    eject: missing
  - name: both
    eject: always
    eject_expr: 'true'
  - name: mixed
    command_regex: ls
    eject_expr: 'true'
  - name: badexpr
    eject_expr: 'nope =='
`
	_, err := catalog.Load(strings.NewReader(doc), alwaysHooks())
	require.Error(t, err)

	errs := catalog.ValidationErrors(err)
	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		var ve *catalog.ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}

	assert.ElementsMatch(t, []string{
		"exercises[0].name",
		"exercises[0].command_regex",
		"exercises[2].name",
		"exercises[2].filesystem_conditions[0].state",
		"exercises[2].filesystem_conditions[1]",
		"exercises[2].filesystem_conditions[2]",
		"exercises[2].filesystem_conditions[3]",
		"exercises[2].env_var_conditions[0].value_regex",
		"exercises[2].env_var_conditions[1].name",
		"exercises[3].eject",
		"exercises[4].eject",
		"exercises[5].eject",
		"exercises[6].eject_expr",
	}, keys)
	assert.Contains(t, err.Error(), "13 validation errors")
}

func TestLoad_AbsentDirectoryRejected(t *testing.T) {
	doc := `
exercises:
  - name: rmdir
    command_regex: rmdir
    filesystem_conditions:
      - path: build
        state: absent
        directory: true
`
	_, err := catalog.Load(strings.NewReader(doc), nil)
	require.Error(t, err)

	errs := catalog.ValidationErrors(err)
	require.Len(t, errs, 1)
	var ve *catalog.ValidationError
	require.ErrorAs(t, errs[0], &ve)
	assert.Equal(t, "exercises[0].filesystem_conditions[0]", ve.Key)
	assert.Contains(t, ve.Reason, "directory requires state")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shellBasics), 0o644))

	cat, err := catalog.LoadFile(path, alwaysHooks())
	require.NoError(t, err)
	assert.Len(t, cat.Exercises, 5)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidationErrors_NotAggregate(t *testing.T) {
	assert.Nil(t, catalog.ValidationErrors(assert.AnError))
}
