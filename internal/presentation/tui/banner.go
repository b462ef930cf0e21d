package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the autograde ASCII banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{`                _                              _      `, "#34d399"},
		{`   __ _ _   _| |_ ___   __ _ _ __ __ _  __| | ___ `, "#2dd4bf"},
		{`  / _` + "`" + ` | | | | __/ _ \ / _` + "`" + ` | '__/ _` + "`" + ` |/ _` + "`" + ` |/ _ \`, "#22d3ee"},
		{` | (_| | |_| | || (_) | (_| | | | (_| | (_| |  __/`, "#38bdf8"},
		{`  \__,_|\__,_|\__\___/ \__, |_|  \__,_|\__,_|\___|`, "#60a5fa"},
		{`                       |___/                      `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
