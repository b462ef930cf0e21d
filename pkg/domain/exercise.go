package domain

import (
	"context"
	"strings"
)

// EjectFunc is a custom completion hook. When an exercise carries one it
// replaces every rule check: returning true completes the exercise, anything
// else leaves it incomplete.
type EjectFunc func(ctx context.Context, exercise Exercise, state UserState) (bool, error)

// Exercise is one gradable unit of an ordered curriculum.
//
// Exercises are defined once when a catalogue is loaded. Complete is the only
// field that changes at runtime and it is owned by the registry holding the
// exercise.
type Exercise struct {
	Name     string
	Sequence int

	// Rule-based verification. Nil patterns and empty lists are skipped.
	CommandRegex         *Pattern
	CwdRegex             *Pattern
	OutputRegex          *Pattern
	FileSystemConditions []FileSystemCondition
	EnvVarConditions     []EnvVarCondition

	// Eject replaces rule-based verification when set.
	Eject EjectFunc

	// Feedback templates. Empty means unset.
	StartMessage string
	WinMessage   string
	Hint         string
	EndMessage   string

	Complete bool
}

// HasEject reports whether the exercise is verified by a custom hook.
func (e *Exercise) HasEject() bool {
	return e.Eject != nil
}

// Conditions returns the rule checks of the exercise in evaluation order:
// command, output and cwd patterns, then filesystem and environment conditions.
func (e *Exercise) Conditions() []Condition {
	conds := make([]Condition, 0, 3+len(e.FileSystemConditions)+len(e.EnvVarConditions))
	if e.CommandRegex != nil {
		conds = append(conds, RegexCondition{Target: TargetCommand, Pattern: e.CommandRegex})
	}
	if e.OutputRegex != nil {
		conds = append(conds, RegexCondition{Target: TargetOutput, Pattern: e.OutputRegex})
	}
	if e.CwdRegex != nil {
		conds = append(conds, RegexCondition{Target: TargetCwd, Pattern: e.CwdRegex})
	}
	for _, fc := range e.FileSystemConditions {
		conds = append(conds, fc)
	}
	for _, ec := range e.EnvVarConditions {
		conds = append(conds, ec)
	}
	return conds
}

// UserState is the snapshot of a learner's terminal at the moment of a
// grading attempt. The engine only reads it.
type UserState struct {
	ExerciseName string            `json:"exercise_name" mapstructure:"exercise_name"`
	Command      string            `json:"command" mapstructure:"command"`
	Cwd          string            `json:"cwd" mapstructure:"cwd"`
	Output       string            `json:"output" mapstructure:"output"`
	Environ      map[string]string `json:"environ,omitempty" mapstructure:"environ"`
}

// Getenv looks up a variable in the snapshot environment.
func (s UserState) Getenv(name string) (string, bool) {
	v, ok := s.Environ[name]
	return v, ok
}

// HomeDir returns the learner's HOME as captured in the snapshot, or "".
func (s UserState) HomeDir() string {
	return s.Environ["HOME"]
}

// EnvironFromPairs converts KEY=VALUE entries (as returned by os.Environ)
// into a map. Entries without '=' are kept with an empty value.
func EnvironFromPairs(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
