package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/sandbox"
)

// NewCodeRunTool executes an attached python script in the sandbox and
// returns the last line of stdout, which is where these scripts print their
// result.
func NewCodeRunTool(runner sandbox.Runner) agent.Tool {
	return agent.Tool{
		Name:        "code_run",
		Description: "Run an attached .py file in an isolated sandbox and return the final line it prints.",
		SchemaJSON:  `{"type":"object","properties":{"file_path":{"type":"string","description":"Path to the .py file"},"timeout":{"type":"integer","description":"Seconds before the run is killed"}}}`,
		Aliases: map[string][]string{
			"file_path": {"path", "filename", "file", "script"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if runner == nil {
				return "ERROR: code_run: sandbox not configured.", nil
			}

			path, _ := params["file_path"].(string)
			if path == "" {
				path = st.FileName
			}
			if path == "" || !strings.HasSuffix(path, ".py") {
				return "ERROR: No .py file.", nil
			}

			timeout := sandbox.DefaultConfig().RunTimeout
			if t, ok := params["timeout"].(float64); ok && t > 0 {
				timeout = secondsToDuration(t)
			}

			result, err := runner.RunPython(ctx, path, timeout)
			if result.TimedOut {
				return "ERROR: code_run: execution timed out.", nil
			}
			if err != nil {
				return fmt.Sprintf("ERROR: code_run: %v", err), nil
			}
			if result.Code != 0 {
				return fmt.Sprintf("ERROR: code_run: %s", clampText(strings.TrimSpace(result.Stderr), 400)), nil
			}

			lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
			return strings.TrimSpace(lines[len(lines)-1]), nil
		},
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
