package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/maitre/pkg/domain"
)

// entryID is the Mermaid node drawn for the start of every turn.
const entryID = "turn_start"

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []domain.StateName
	CurrentState  domain.StateName
}

// OverlayFromPath marks every state of a turn as visited and the last one as current.
func OverlayFromPath(path []domain.StateName) *GraphOverlay {
	o := &GraphOverlay{VisitedStates: path}
	if len(path) > 0 {
		o.CurrentState = path[len(path)-1]
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart from the state graph.
// It applies semantic styling:
// - Turn entry: ((Circle))
// - Input (extraction/classification): [/Parallelogram/]
// - Commit (external side effect): [[Subroutine]]
// - Recovery: {{Hexagon}}
// - Control (yield/done): ([Stadium])
// - Default: [Rectangle]
// Recovery edges are dotted. Overlay styles are applied if provided.
func GenerateMermaid(states []domain.StateInfo, entry []domain.Transition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sb.WriteString(fmt.Sprintf("    %s((\"turn\"))\n", entryID))
	for _, t := range entry {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", entryID, edge(t.Condition, false), sanitizeMermaidID(t.To)))
	}

	kinds := make(map[string]domain.StateKind, len(states))
	for _, s := range states {
		kinds[string(s.Name)] = s.Kind
	}

	for _, s := range states {
		safeID := sanitizeMermaidID(string(s.Name))

		opener, closer := "[", "]"
		switch s.Kind {
		case domain.KindInput:
			opener, closer = "[/", "/]"
		case domain.KindCommit:
			opener, closer = "[[", "]]"
		case domain.KindRecovery:
			opener, closer = "{{", "}}"
		case domain.KindControl:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, s.Name, closer))

		for _, t := range s.Transitions {
			dotted := kinds[t.To] == domain.KindRecovery
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, edge(t.Condition, dotted), sanitizeMermaidID(t.To)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(name))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState))))
		}
	}

	return sb.String()
}

func edge(condition string, dotted bool) string {
	if condition == "" {
		if dotted {
			return "-.->"
		}
		return "-->"
	}
	// Escape double quotes in condition for Mermaid label
	safe := strings.ReplaceAll(condition, "\"", "'")
	if dotted {
		return fmt.Sprintf("-. \"%s\" .->", safe)
	}
	return fmt.Sprintf("-- \"%s\" -->", safe)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
