package loam

import "github.com/aretw0/autograde/pkg/catalog"

// ExerciseMetadata is the front matter of an exercise document.
// The document body is used as the start message when start_message is unset.
type ExerciseMetadata struct {
	Name string `json:"name" mapstructure:"name"`

	// Sequence arrives as json.Number in strict mode, or as any YAML scalar.
	Sequence any `json:"sequence" mapstructure:"sequence"`

	CommandRegex string `json:"command_regex" mapstructure:"command_regex"`
	CwdRegex     string `json:"cwd_regex" mapstructure:"cwd_regex"`
	OutputRegex  string `json:"output_regex" mapstructure:"output_regex"`

	FileSystemConditions []catalog.FileSystemDef `json:"filesystem_conditions" mapstructure:"filesystem_conditions"`
	EnvVarConditions     []catalog.EnvVarDef     `json:"env_var_conditions" mapstructure:"env_var_conditions"`

	Eject     string `json:"eject" mapstructure:"eject"`
	EjectExpr string `json:"eject_expr" mapstructure:"eject_expr"`

	StartMessage string `json:"start_message" mapstructure:"start_message"`
	WinMessage   string `json:"win_message" mapstructure:"win_message"`
	Hint         string `json:"hint" mapstructure:"hint"`
	EndMessage   string `json:"end_message" mapstructure:"end_message"`
}
