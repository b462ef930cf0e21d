package domain

import (
	"fmt"
	"strings"
)

// ExistState is the expected existence of a path or an environment variable.
type ExistState string

const (
	Present ExistState = "present"
	Absent  ExistState = "absent"
)

// ParseExistState parses a state name. The empty string means Present.
func ParseExistState(s string) (ExistState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Present):
		return Present, nil
	case string(Absent):
		return Absent, nil
	default:
		return "", fmt.Errorf("unknown state %q (want %q or %q)", s, Present, Absent)
	}
}

// Condition is a single rule check of an exercise.
// The set of variants is closed: RegexCondition, FileSystemCondition and EnvVarCondition.
type Condition interface {
	isCondition()
}

// RegexTarget selects which field of a UserState a RegexCondition inspects.
type RegexTarget int

const (
	TargetCommand RegexTarget = iota
	TargetOutput
	TargetCwd
)

func (t RegexTarget) String() string {
	switch t {
	case TargetCommand:
		return "command"
	case TargetOutput:
		return "output"
	case TargetCwd:
		return "cwd"
	default:
		return fmt.Sprintf("RegexTarget(%d)", int(t))
	}
}

// RegexCondition requires a field of the snapshot to prefix-match a pattern.
type RegexCondition struct {
	Target  RegexTarget
	Pattern *Pattern
}

// Subject returns the snapshot field this condition inspects.
func (c RegexCondition) Subject(state UserState) string {
	switch c.Target {
	case TargetOutput:
		return state.Output
	case TargetCwd:
		return state.Cwd
	default:
		return state.Command
	}
}

// PathExpectation describes what must be found at a filesystem path.
// Variants: ExpectAbsent, ExpectDirectory, ExpectFile.
type PathExpectation interface {
	isPathExpectation()
}

// ExpectAbsent requires the path to not exist.
type ExpectAbsent struct{}

// ExpectDirectory requires the path to exist and be a directory.
type ExpectDirectory struct{}

// ExpectFile requires the path to exist and be a regular (non-directory) node.
// Content and ContentRegex are optional checks on the file's text.
type ExpectFile struct {
	Content      *string
	ContentRegex *Pattern
}

// FileSystemCondition checks a path relative to the learner's cwd
// (Relative) or home directory.
type FileSystemCondition struct {
	Path     string
	Relative bool
	Expect   PathExpectation // nil behaves as ExpectFile{}
}

// NewFileSystemCondition builds a condition from the flat attribute view
// (state, directory flag, optional content checks) used by catalogues.
// Content checks are only accepted for present files.
func NewFileSystemCondition(path string, relative bool, state ExistState, directory bool, content *string, contentRegex *Pattern) (FileSystemCondition, error) {
	c := FileSystemCondition{Path: path, Relative: relative}
	hasContent := content != nil || contentRegex != nil

	switch {
	case path == "":
		return c, fmt.Errorf("filesystem condition requires a path")
	case state == Absent:
		if hasContent {
			return c, fmt.Errorf("path %q: content checks require state %q", path, Present)
		}
		if directory {
			return c, fmt.Errorf("path %q: directory requires state %q", path, Present)
		}
		c.Expect = ExpectAbsent{}
	case directory:
		if hasContent {
			return c, fmt.Errorf("path %q: content checks are not allowed on directories", path)
		}
		c.Expect = ExpectDirectory{}
	default:
		c.Expect = ExpectFile{Content: content, ContentRegex: contentRegex}
	}
	return c, nil
}

// State reports the expected existence of the path.
func (c FileSystemCondition) State() ExistState {
	if _, ok := c.Expect.(ExpectAbsent); ok {
		return Absent
	}
	return Present
}

// Directory reports whether the path is expected to be a directory.
func (c FileSystemCondition) Directory() bool {
	_, ok := c.Expect.(ExpectDirectory)
	return ok
}

// EnvVarCondition checks an environment variable of the snapshot.
// ValueRegex only applies when State is Present.
type EnvVarCondition struct {
	Name       string
	State      ExistState
	ValueRegex *Pattern
}

func (RegexCondition) isCondition()      {}
func (FileSystemCondition) isCondition() {}
func (EnvVarCondition) isCondition()     {}

func (ExpectAbsent) isPathExpectation()    {}
func (ExpectDirectory) isPathExpectation() {}
func (ExpectFile) isPathExpectation()      {}
