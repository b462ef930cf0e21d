package feedback

// Attempt is the template data of a win message.
type Attempt struct {
	ExerciseName string
	Command      string
	Output       string
	Cwd          string
}
