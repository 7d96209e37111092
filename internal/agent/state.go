// Package agent implements the bounded tool-using control loop: a planner
// proposes sub-goals, a controller picks the next action, a tool executor
// dispatches it and records the outcome, and a finalizer shapes the answer.
package agent

// Turn is one recorded decision/execution/observation triple. Turns are
// append-only; once on the scratchpad they are never modified.
type Turn struct {
	Thought     string         `json:"thought"`
	Action      string         `json:"action"`
	Params      map[string]any `json:"params"`
	Observation string         `json:"observation"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	DurationMS  int64          `json:"duration_ms"`
}

// PlanStep is a planner-proposed sub-goal with an optional tool suggestion.
type PlanStep struct {
	Goal       string         `json:"goal"`
	ToolHint   string         `json:"tool_hint,omitempty"`
	ParamsHint map[string]any `json:"params_hint,omitempty"`
}

// State is the single mutable record threaded through one task run.
// It is owned by exactly one goroutine; independent tasks get independent
// State values and never share them.
type State struct {
	TaskID   string
	Question string
	FileName string // optional attached file path

	Plan       []PlanStep
	PlanCursor int // advances by one only after a successful tool execution
	Scratchpad []Turn

	// NextAction holds a pending decision emitted by the executor
	// (early finish or loop abort). The orchestrator consumes it before
	// asking the controller again; it is never left stale across two
	// controller calls.
	NextAction Decision

	Step     int
	MaxSteps int
	Answer   string

	AllowedTools []string // empty = all registered tools permitted
	LastTool     string

	AutoFinishAfterTool bool
	EarlyStop           bool
	NoProgressCount     int
}

// NewState creates the initial state for a task with all counters zeroed.
func NewState(taskID, question, fileName string, maxSteps int, allowedTools []string) *State {
	return &State{
		TaskID:       taskID,
		Question:     question,
		FileName:     fileName,
		MaxSteps:     maxSteps,
		AllowedTools: allowedTools,
		EarlyStop:    true,
	}
}

// LastTurn returns the most recent scratchpad entry, or nil if none exists.
func (s *State) LastTurn() *Turn {
	if len(s.Scratchpad) == 0 {
		return nil
	}
	return &s.Scratchpad[len(s.Scratchpad)-1]
}
