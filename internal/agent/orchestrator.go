package agent

import (
	"context"
	"log"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

// Result is what a completed run hands back across the process boundary.
type Result struct {
	TaskID     string        `json:"task_id"`
	Question   string        `json:"question"`
	FileName   string        `json:"file_name,omitempty"`
	Answer     string        `json:"answer"`
	Scratchpad []Turn        `json:"turns"`
	LastTool   string        `json:"last_tool,omitempty"`
	Steps      int           `json:"steps"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Orchestrator wires planner, controller, executor and finalizer into the
// control flow: Planner -> Controller -> (Executor -> Controller)* ->
// Finalize. It is pure wiring; all policy lives in the components.
type Orchestrator struct {
	Planner    *Planner
	Controller *Controller
	Executor   *Executor
}

// NewOrchestrator assembles the loop around a registry and an oracle.
// A nil oracle is legal; the run degrades to a diagnostic answer.
func NewOrchestrator(reg *Registry, client oracle.Client) *Orchestrator {
	return &Orchestrator{
		Planner:    &Planner{Oracle: client, Registry: reg},
		Controller: &Controller{Oracle: client, Registry: reg},
		Executor:   &Executor{Registry: reg},
	}
}

// Run executes one task to completion and always returns a textual answer;
// no error path escapes the loop. The iteration ceiling of MaxSteps+2
// guarantees termination even under adversarial oracle output (one slot for
// the planner-free first decision, one for terminal bookkeeping).
func (o *Orchestrator) Run(ctx context.Context, st *State) Result {
	start := time.Now()

	o.Planner.Plan(ctx, st)

	ceiling := st.MaxSteps + 2
	var terminal *Finish
	for i := 0; i < ceiling && terminal == nil; i++ {
		var decision Decision
		if st.NextAction != nil {
			decision = st.NextAction
			st.NextAction = nil
		} else {
			decision = o.Controller.Decide(ctx, st)
		}

		switch d := decision.(type) {
		case Finish:
			terminal = &d
		case ToolCall:
			log.Printf("task %s step %d: dispatching %s", st.TaskID, st.Step+1, d.Name)
			o.Executor.Execute(ctx, st, d)
		}
	}
	if terminal == nil {
		log.Printf("task %s: iteration ceiling reached without a finish decision", st.TaskID)
	}

	Finalize(st, terminal)

	return Result{
		TaskID:     st.TaskID,
		Question:   st.Question,
		FileName:   st.FileName,
		Answer:     st.Answer,
		Scratchpad: st.Scratchpad,
		LastTool:   st.LastTool,
		Steps:      st.Step,
		Elapsed:    time.Since(start),
	}
}
