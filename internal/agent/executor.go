package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/normalize"
)

// loopAbortThreshold is the number of consecutive identical failures after
// which the executor gives up on the current approach. This is the only
// hard loop-breaker and fires regardless of remaining step budget.
const loopAbortThreshold = 2

// Executor dispatches tool calls: it reconciles parameters, invokes the
// capability, records exactly one Turn per step, tracks progress, and may
// itself emit a terminal Finish (early stop or loop abort) via
// State.NextAction. No capability failure ever escapes as an error.
type Executor struct {
	Registry *Registry
}

// Execute runs one tool call against the state.
func (e *Executor) Execute(ctx context.Context, st *State, call ToolCall) {
	start := time.Now()
	observation := "ERROR: No tool selected."
	success := false
	errText := ""

	switch {
	case call.Name == "":
		// observation already set
	case !e.Registry.Allowed(st, call.Name):
		observation = fmt.Sprintf("ERROR: Unknown or disallowed tool: %s", call.Name)
	default:
		tool, _ := e.Registry.Lookup(call.Name)
		params := e.Registry.Reconcile(call.Name, call.Params)
		out, err := tool.Fn(ctx, st, params)
		if err != nil {
			observation = fmt.Sprintf("TOOL_ERROR: %s: %v", call.Name, err)
			errText = err.Error()
		} else {
			observation = out
			success = !isFailureObservation(out)
		}
	}

	duration := time.Since(start).Milliseconds()

	thought := call.Rationale
	if thought == "" {
		thought = fmt.Sprintf("Chose %s", call.Name)
	}
	action := call.Name
	if action == "" {
		action = "finish"
	}

	// Only an identical repeat of the previous failure counts as stuck;
	// a different failure or any success resets the counter.
	if success {
		st.NoProgressCount = 0
	} else if prev := st.LastTurn(); prev != nil {
		if prev.Action == action && prev.Observation == observation {
			st.NoProgressCount++
		} else {
			st.NoProgressCount = 0
		}
	}

	st.Scratchpad = append(st.Scratchpad, Turn{
		Thought:     thought,
		Action:      action,
		Params:      call.Params,
		Observation: observation,
		Success:     success,
		Error:       errText,
		DurationMS:  duration,
	})
	st.Step++
	st.LastTool = call.Name
	if success {
		st.PlanCursor++
	}
	st.NextAction = nil

	if success && st.EarlyStop {
		if ok, final := normalize.EarlyFinish(st.Question, observation); ok {
			st.NextAction = Finish{
				Answer:    final,
				Rationale: fmt.Sprintf("Early stop: confident final answer from %s.", call.Name),
			}
			return
		}
	}

	if !success && st.NoProgressCount >= loopAbortThreshold {
		st.NextAction = Finish{
			Answer:    fmt.Sprintf("Stopping due to repeated failures calling %s: %s", call.Name, observation),
			Rationale: "Loop prevention.",
		}
	}
}

// isFailureObservation reports whether a capability signalled an expected
// failure through its reserved observation markers.
func isFailureObservation(obs string) bool {
	return strings.HasPrefix(obs, "ERROR") ||
		strings.HasPrefix(obs, "TOOL_ERROR") ||
		strings.HasPrefix(obs, "unknown")
}
