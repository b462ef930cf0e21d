package tracker

import (
	"context"
	"strings"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/feedback"
	"github.com/aretw0/autograde/pkg/registry"
	"github.com/aretw0/autograde/pkg/verify"
)

// KeepTrying is returned as submit text when an eject hook did not complete
// the exercise.
const KeepTrying = "Not quite there yet, keep trying."

// Messages are the catalogue-wide start and end templates.
type Messages struct {
	Start string
	End   string
}

// StatusEntry is one line of the exercise status view.
type StatusEntry struct {
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Complete bool   `json:"complete"`
}

// Result is the outcome of a successful submission.
type Result struct {
	Exercise  *domain.Exercise
	Completed bool
	Text      string
}

// Tracker is the learner-facing surface over one session's registry.
// Like the registry it is not safe for concurrent use.
type Tracker struct {
	reg      *registry.Registry
	messages Messages
	verifier *verify.Verifier
	renderer *feedback.Renderer
}

// Option defines a functional option for configuring the Tracker.
type Option func(*Tracker)

// WithMessages sets the catalogue-wide start and end messages.
func WithMessages(m Messages) Option {
	return func(t *Tracker) {
		t.messages = m
	}
}

// WithVerifier sets the verification pipeline.
func WithVerifier(v *verify.Verifier) Option {
	return func(t *Tracker) {
		t.verifier = v
	}
}

// WithRenderer sets the message renderer.
func WithRenderer(r *feedback.Renderer) Option {
	return func(t *Tracker) {
		t.renderer = r
	}
}

// New creates a tracker over reg. Without options it uses a default
// verifier and a plain renderer.
func New(reg *registry.Registry, opts ...Option) *Tracker {
	t := &Tracker{reg: reg}
	for _, opt := range opts {
		opt(t)
	}
	if t.verifier == nil {
		t.verifier = verify.New()
	}
	if t.renderer == nil {
		t.renderer = feedback.Plain()
	}
	return t
}

// Registry returns the underlying registry.
func (t *Tracker) Registry() *registry.Registry {
	return t.reg
}

// StartMessage renders the global start message followed by the start
// message of the active exercise.
func (t *Tracker) StartMessage() string {
	msg := t.renderer.Render(t.messages.Start, nil)
	if _, ex, err := t.reg.Active(); err == nil && ex.StartMessage != "" {
		msg = join(msg, t.renderStart(ex))
	}
	return msg
}

// EndMessage renders the global end message.
func (t *Tracker) EndMessage() string {
	return t.renderer.RenderStyled(t.messages.End, nil, feedback.EndStyle)
}

// ActiveHint renders the hint of the active exercise.
// Returns domain.ErrAllComplete when every exercise is complete.
func (t *Tracker) ActiveHint() (string, error) {
	_, ex, err := t.reg.Active()
	if err != nil {
		return "", err
	}
	hint := t.renderer.Markdown(t.renderer.Render(ex.Hint, nil))
	return t.renderer.Style(hint, feedback.HintStyle), nil
}

// Current returns the index of the active exercise.
// Returns domain.ErrAllComplete when every exercise is complete.
func (t *Tracker) Current() (int, error) {
	idx, _, err := t.reg.Active()
	return idx, err
}

// Status lists every exercise in order, flagging the active one.
func (t *Tracker) Status() []StatusEntry {
	activeIdx, _, _ := t.reg.Active()
	entries := make([]StatusEntry, 0, t.reg.Len())
	for i, ex := range t.reg.All() {
		entries = append(entries, StatusEntry{
			Name:     ex.Name,
			Active:   i == activeIdx,
			Complete: ex.Complete,
		})
	}
	return entries
}

// StatusText renders Status with an arrow on the active exercise.
func (t *Tracker) StatusText() string {
	var b strings.Builder
	b.WriteString("Exercise Status:")
	marker := t.renderer.Style("->", feedback.MarkerStyle)
	for _, e := range t.Status() {
		prefix := "  "
		if e.Active {
			prefix = marker
		}
		b.WriteString("\n")
		b.WriteString(prefix)
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	return b.String()
}

// Reset marks every exercise incomplete and returns the active index,
// or registry.NoActive when there are no exercises.
func (t *Tracker) Reset() int {
	return t.reg.Reset()
}

// Submit grades a snapshot.
//
// It returns domain.ErrAllComplete when there is nothing left to grade and
// passes through the pipeline's not-found and rejection errors. On success
// the text holds the win message, then the next exercise's start message,
// then the end message once everything is complete.
func (t *Tracker) Submit(ctx context.Context, state domain.UserState) (Result, error) {
	if t.reg.IsAllComplete() {
		return Result{}, domain.ErrAllComplete
	}

	ex, err := t.verifier.RunExercise(ctx, t.reg, state)
	if err != nil {
		return Result{}, err
	}
	if !ex.Complete {
		return Result{Exercise: ex, Text: KeepTrying}, nil
	}

	text := t.renderer.Render(ex.WinMessage, feedback.Attempt{
		ExerciseName: state.ExerciseName,
		Command:      state.Command,
		Output:       state.Output,
		Cwd:          state.Cwd,
	})
	if _, next, err := t.reg.Active(); err == nil && next.StartMessage != "" {
		text = join(text, t.renderStart(next))
	}
	if t.reg.IsAllComplete() && t.messages.End != "" {
		text = join(text, t.EndMessage())
	}
	return Result{Exercise: ex, Completed: true, Text: text}, nil
}

func (t *Tracker) renderStart(ex *domain.Exercise) string {
	return t.renderer.Markdown(t.renderer.Render(ex.StartMessage, nil))
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
