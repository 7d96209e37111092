package trace

import (
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

// FormatTurns renders a scratchpad as a numbered, human-readable trace.
func FormatTurns(turns []agent.Turn) string {
	var lines []string
	for i, t := range turns {
		lines = append(lines, fmt.Sprintf(
			"%d. [%s] %s\n   params=%v | duration=%dms | success=%t\n   -> %s\n",
			i+1, t.Action, t.Thought, t.Params, t.DurationMS, t.Success, t.Observation))
	}
	return strings.Join(lines, "\n")
}
