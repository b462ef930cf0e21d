package feedback

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Style is a terminal text style.
type Style struct {
	Color string
	Bold  bool
	Blink bool
	Faint bool
}

var (
	// HintStyle is applied to hints.
	HintStyle = Style{Color: "yellow"}
	// EndStyle is applied to the end message.
	EndStyle = Style{Color: "yellow"}
	// MarkerStyle is applied to the status marker of the active exercise.
	MarkerStyle = Style{Color: "cyan", Blink: true}
)

// ansiColors maps colour names to the basic ANSI palette.
var ansiColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"grey":    "8",
	"gray":    "8",
}

// Renderer turns message templates into terminal text.
type Renderer struct {
	profile termenv.Profile
	logger  *slog.Logger

	// glamour's renderer keeps per-render state; mdMu serialises it across sessions.
	mdMu     sync.Mutex
	markdown func(string) (string, error)
}

// Option defines a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithProfile sets the colour profile. termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.profile = p
	}
}

// WithMarkdown renders start messages and hints as markdown.
func WithMarkdown(enabled bool) Option {
	return func(r *Renderer) {
		if !enabled {
			r.markdown = nil
			return
		}
		r.markdown = newMarkdownRenderer()
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer. Colours follow the terminal's detected profile
// unless WithProfile is given.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		profile: termenv.ColorProfile(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plain returns a renderer without colours or markdown.
func Plain() *Renderer {
	return New(WithProfile(termenv.Ascii))
}

// Render executes tmpl as a text/template with data. Templates may use the
// helpers color, bold, blink and faint. A broken template is logged and
// its raw text returned.
func (r *Renderer) Render(tmpl string, data any) string {
	if tmpl == "" || !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	t, err := template.New("message").Funcs(r.funcs()).Parse(tmpl)
	if err != nil {
		r.logger.Warn("invalid message template", "err", err)
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		r.logger.Warn("message template failed", "err", err)
		return tmpl
	}
	return buf.String()
}

// RenderStyled renders tmpl and applies style to the result.
func (r *Renderer) RenderStyled(tmpl string, data any, style Style) string {
	return r.Style(r.Render(tmpl, data), style)
}

// Markdown renders s as markdown when enabled, otherwise returns it unchanged.
func (r *Renderer) Markdown(s string) string {
	if r.markdown == nil || s == "" {
		return s
	}
	r.mdMu.Lock()
	out, err := r.markdown(s)
	r.mdMu.Unlock()
	if err != nil {
		r.logger.Warn("markdown rendering failed", "err", err)
		return s
	}
	return strings.Trim(out, "\n")
}

// Style applies a terminal style to s.
func (r *Renderer) Style(s string, style Style) string {
	if s == "" || r.profile == termenv.Ascii {
		return s
	}
	out := r.profile.String(s)
	if style.Color != "" {
		out = out.Foreground(r.color(style.Color))
	}
	if style.Bold {
		out = out.Bold()
	}
	if style.Blink {
		out = out.Blink()
	}
	if style.Faint {
		out = out.Faint()
	}
	return out.String()
}

func (r *Renderer) color(name string) termenv.Color {
	if code, ok := ansiColors[strings.ToLower(name)]; ok {
		return r.profile.Color(code)
	}
	return r.profile.Color(name)
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"color": func(color, s string) string {
			return r.Style(s, Style{Color: color})
		},
		"bold": func(s string) string {
			return r.Style(s, Style{Bold: true})
		},
		"blink": func(s string) string {
			return r.Style(s, Style{Blink: true})
		},
		"faint": func(s string) string {
			return r.Style(s, Style{Faint: true})
		},
	}
}

func newMarkdownRenderer() func(string) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil
	}
	return tr.Render
}
