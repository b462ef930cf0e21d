package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/autograde/pkg/domain"
)

// Overlay carries a session's progress to visualize on the curriculum.
type Overlay struct {
	Completed []string
	Active    string
}

// GenerateMermaid produces a Mermaid flowchart of the curriculum, one node
// per exercise chained in sequence order. Shapes follow the grading kind:
//   - Eject hook: [[Subroutine]]
//   - Filesystem or environment rules: [/Parallelogram/]
//   - Regex rules only: [Rectangle]
//
// Completed and active exercises are styled when an overlay is given.
func GenerateMermaid(exercises []*domain.Exercise, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	prev := "start"
	for _, ex := range exercises {
		safeID := sanitizeMermaidID(ex.Name)

		opener, closer := "[", "]"
		switch {
		case ex.Eject != nil:
			opener, closer = "[[", "]]"
		case len(ex.FileSystemConditions) > 0 || len(ex.EnvVarConditions) > 0:
			opener, closer = "[/", "/]"
		}

		label := strings.ReplaceAll(ex.Name, "\"", "'")
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, safeID)
		prev = safeID
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef complete fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Completed {
			safeID := sanitizeMermaidID(name)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s complete;\n", safeID)
			}
		}

		if overlay.Active != "" {
			fmt.Fprintf(&sb, "    class %s active;\n", sanitizeMermaidID(overlay.Active))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(
		".", "_",
		"-", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	).Replace(id)
}
