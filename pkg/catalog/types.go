package catalog

// File is the on-disk shape of a catalogue.
type File struct {
	StartMessage string        `yaml:"start_message" json:"start_message,omitempty" mapstructure:"start_message"`
	EndMessage   string        `yaml:"end_message" json:"end_message,omitempty" mapstructure:"end_message"`
	Exercises    []ExerciseDef `yaml:"exercises" json:"exercises" mapstructure:"exercises"`
}

// ExerciseDef is the declarative definition of one exercise.
// Empty strings mean "unset".
type ExerciseDef struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Sequence *int   `yaml:"sequence,omitempty" json:"sequence,omitempty" mapstructure:"sequence"`

	CommandRegex string `yaml:"command_regex,omitempty" json:"command_regex,omitempty" mapstructure:"command_regex"`
	CwdRegex     string `yaml:"cwd_regex,omitempty" json:"cwd_regex,omitempty" mapstructure:"cwd_regex"`
	OutputRegex  string `yaml:"output_regex,omitempty" json:"output_regex,omitempty" mapstructure:"output_regex"`

	FileSystemConditions []FileSystemDef `yaml:"filesystem_conditions,omitempty" json:"filesystem_conditions,omitempty" mapstructure:"filesystem_conditions"`
	EnvVarConditions     []EnvVarDef     `yaml:"env_var_conditions,omitempty" json:"env_var_conditions,omitempty" mapstructure:"env_var_conditions"`

	// Eject names a Go hook from the hook registry.
	Eject string `yaml:"eject,omitempty" json:"eject,omitempty" mapstructure:"eject"`
	// EjectExpr is an expr-lang completion expression.
	EjectExpr string `yaml:"eject_expr,omitempty" json:"eject_expr,omitempty" mapstructure:"eject_expr"`

	StartMessage string `yaml:"start_message,omitempty" json:"start_message,omitempty" mapstructure:"start_message"`
	WinMessage   string `yaml:"win_message,omitempty" json:"win_message,omitempty" mapstructure:"win_message"`
	Hint         string `yaml:"hint,omitempty" json:"hint,omitempty" mapstructure:"hint"`
	EndMessage   string `yaml:"end_message,omitempty" json:"end_message,omitempty" mapstructure:"end_message"`
}

func (d ExerciseDef) hasRules() bool {
	return d.CommandRegex != "" || d.CwdRegex != "" || d.OutputRegex != "" ||
		len(d.FileSystemConditions) > 0 || len(d.EnvVarConditions) > 0
}

// FileSystemDef is the declarative form of a filesystem condition.
type FileSystemDef struct {
	Path         string  `yaml:"path" json:"path" mapstructure:"path"`
	Relative     bool    `yaml:"relative,omitempty" json:"relative,omitempty" mapstructure:"relative"`
	State        string  `yaml:"state,omitempty" json:"state,omitempty" mapstructure:"state"`
	Directory    bool    `yaml:"directory,omitempty" json:"directory,omitempty" mapstructure:"directory"`
	Content      *string `yaml:"content,omitempty" json:"content,omitempty" mapstructure:"content"`
	ContentRegex string  `yaml:"content_regex,omitempty" json:"content_regex,omitempty" mapstructure:"content_regex"`
}

// EnvVarDef is the declarative form of an environment variable condition.
type EnvVarDef struct {
	Name       string `yaml:"name" json:"name" mapstructure:"name"`
	State      string `yaml:"state,omitempty" json:"state,omitempty" mapstructure:"state"`
	ValueRegex string `yaml:"value_regex,omitempty" json:"value_regex,omitempty" mapstructure:"value_regex"`
}
