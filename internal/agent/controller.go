package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const controllerSystem = `You are a tool-using controller. Choose the next action.

Guidance:
- Consider the given plan step (sub-goal + tool hint), but you may override it if a better tool exists.
- Prefer calling a TOOL at least once before finishing. If the previous step fails then use another tool. Prefer openai_answer over wiki_lookup and web_search.

Output ONLY valid JSON:
{"tool": "<tool_name>", "params": {...}, "why": "<1-2 sentences>"}
OR
{"finish": "<final answer>", "why": "<1-2 sentences>"}`

// Controller decides the next action each iteration. It mutates nothing:
// the emitted Decision is its only output.
type Controller struct {
	Oracle   oracle.Client
	Registry *Registry
}

// Decide evaluates the transition rules in order: trusted auto-finish on the
// last successful turn, budget exhaustion, then delegation to the oracle.
// Oracle and parse failures resolve to a diagnostic Finish, never an error.
func (c *Controller) Decide(ctx context.Context, st *State) Decision {
	if last := st.LastTurn(); last != nil && last.Success && st.AutoFinishAfterTool {
		return Finish{Answer: last.Observation, Rationale: "Successful tool result."}
	}
	if st.Step >= st.MaxSteps {
		return Finish{Answer: "Max steps reached.", Rationale: "Budget exhausted."}
	}
	if c.Oracle == nil {
		return Finish{Answer: "Reasoning oracle not configured.", Rationale: "LLM not configured."}
	}

	raw, err := c.Oracle.Complete(ctx, controllerSystem, c.renderRequest(st))
	if err != nil {
		return Finish{Answer: fmt.Sprintf("Controller oracle call failed: %v", err), Rationale: "Oracle error."}
	}
	return parseDecision(raw)
}

// decisionPayload mirrors the oracle's wire format: exactly one of Tool or
// Finish is expected to be present.
type decisionPayload struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
	Finish *string        `json:"finish"`
	Why    string         `json:"why"`
}

func parseDecision(raw string) Decision {
	var payload decisionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		embedded := oracle.ExtractObject(raw)
		if embedded == "" || json.Unmarshal([]byte(embedded), &payload) != nil {
			return Finish{Answer: "Controller did not return JSON.", Rationale: "Parse error."}
		}
	}

	if payload.Finish != nil {
		return Finish{Answer: *payload.Finish, Rationale: payload.Why}
	}
	if payload.Tool != "" {
		params := payload.Params
		if params == nil {
			params = map[string]any{}
		}
		return ToolCall{Name: payload.Tool, Params: params, Rationale: payload.Why}
	}
	return Finish{Answer: "Controller returned neither a tool nor a final answer.", Rationale: "Parse error."}
}

func (c *Controller) renderRequest(st *State) string {
	file := st.FileName
	if file == "" {
		file = "None"
	}

	planStr := "No plan step."
	if st.PlanCursor >= 0 && st.PlanCursor < len(st.Plan) {
		ps := st.Plan[st.PlanCursor]
		hints, _ := json.Marshal(ps.ParamsHint)
		planStr = fmt.Sprintf("Current plan step: goal=%q tool_hint=%q params_hint=%s", ps.Goal, ps.ToolHint, hints)
	}

	return fmt.Sprintf(
		"Task: %s\nFile: %s\n\n%s\n\nSo far:\n%s\n\nAvailable tools:\n%s\nReturn valid JSON only.",
		st.Question, file, planStr, renderScratchpad(st.Scratchpad), renderCatalog(c.Registry),
	)
}

func renderScratchpad(turns []Turn) string {
	if len(turns) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		params, _ := json.Marshal(t.Params)
		parts = append(parts, fmt.Sprintf(
			"Thought: %s\nAction: %s %s\nObservation: %s",
			t.Thought, t.Action, params, t.Observation,
		))
	}
	return strings.Join(parts, "\n\n")
}
