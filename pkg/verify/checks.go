package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/autograde/pkg/domain"
)

var osUserHomeDir = os.UserHomeDir

// checker evaluates the rule conditions of one exercise against one snapshot.
type checker struct {
	exercise string
	state    domain.UserState
	home     func() (string, error)
}

func (c checker) check(cond domain.Condition) error {
	switch cond := cond.(type) {
	case domain.RegexCondition:
		return c.checkRegex(cond)
	case domain.FileSystemCondition:
		return c.checkPath(cond)
	case domain.EnvVarCondition:
		return c.checkEnvVar(cond)
	default:
		return fmt.Errorf("unsupported condition %T", cond)
	}
}

func (c checker) checkRegex(cond domain.RegexCondition) error {
	if cond.Pattern.MatchPrefix(cond.Subject(c.state)) {
		return nil
	}
	switch cond.Target {
	case domain.TargetOutput:
		return domain.Reject(c.exercise, "Sorry your output does not seem right.")
	case domain.TargetCwd:
		return domain.Reject(c.exercise, "Sorry your current working directory does not seem right.")
	default:
		return domain.Reject(c.exercise, "Sorry your command does not seem right.")
	}
}

func (c checker) checkPath(cond domain.FileSystemCondition) error {
	path, err := c.resolvePath(cond)
	if err != nil {
		return err
	}

	// Any stat failure counts as a missing path.
	info, err := os.Stat(path)
	exists := err == nil

	if _, absent := cond.Expect.(domain.ExpectAbsent); absent {
		if exists {
			return domain.Reject(c.exercise, "File or Directory: %s should not exist", path)
		}
		return nil
	}

	if !exists {
		return domain.Reject(c.exercise, "File or Directory: %s should exist", path)
	}

	switch expect := cond.Expect.(type) {
	case domain.ExpectDirectory:
		if !info.IsDir() {
			return domain.Reject(c.exercise, "File: %s should be a directory", path)
		}
		return nil
	case domain.ExpectFile:
		if info.IsDir() {
			return domain.Reject(c.exercise, "Directory: %s should be a file", path)
		}
		return c.checkContent(path, expect)
	default:
		if info.IsDir() {
			return domain.Reject(c.exercise, "Directory: %s should be a file", path)
		}
		return nil
	}
}

func (c checker) checkContent(path string, expect domain.ExpectFile) error {
	if expect.Content == nil && expect.ContentRegex == nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Reject(c.exercise, "File: %s could not be read", path)
	}
	content := string(data)

	if expect.Content != nil && content != *expect.Content {
		return domain.Reject(c.exercise, "File: %s does not match expected content", path)
	}
	if expect.ContentRegex != nil && !expect.ContentRegex.MatchPrefix(content) {
		return domain.Reject(c.exercise, "File: %s does not match expected content", path)
	}
	return nil
}

// resolvePath joins the condition path onto the learner's cwd or home
// directory. A leading "~" expands to the home directory.
func (c checker) resolvePath(cond domain.FileSystemCondition) (string, error) {
	p := cond.Path

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := c.home()
		if err != nil {
			return "", err
		}
		return filepath.Clean(filepath.Join(home, strings.TrimPrefix(p, "~"))), nil
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	base := c.state.Cwd
	if !cond.Relative {
		home, err := c.home()
		if err != nil {
			return "", err
		}
		base = home
	}
	return filepath.Clean(filepath.Join(base, p)), nil
}

func (c checker) checkEnvVar(cond domain.EnvVarCondition) error {
	value, exists := c.state.Getenv(cond.Name)

	if cond.State == domain.Absent {
		if exists {
			return domain.Reject(c.exercise, `Environment Variable: "%s" should not be set`, cond.Name)
		}
		return nil
	}
	if !exists {
		return domain.Reject(c.exercise, `Environment Variable: "%s" should be set`, cond.Name)
	}
	if cond.ValueRegex != nil && !cond.ValueRegex.MatchPrefix(value) {
		return domain.Reject(c.exercise, `Environment Variable: "%s" does not match expected value`, cond.Name)
	}
	return nil
}
