package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const maxPlanSteps = 4

const plannerSystem = `You are a planning assistant. Produce a short plan (1-4 steps) to solve the task with the available tools.
Each step should include:
- goal: concise sub-goal
- tool_hint: the most appropriate tool name from the catalog (or "" if no clear tool). Prefer the tool openai_answer over web_search for searching and reasoning tasks that do not involve additional files.
- params_hint: minimal params (if any), as a JSON object. Should contain a detailed "query" for the tool.

Return JSON only:
{"steps":[{"goal":"...","tool_hint":"...","params_hint":{...}}, ...]}`

// Planner makes the one-shot plan before the loop starts. With no oracle
// configured it degrades to an empty plan; the controller works without one.
type Planner struct {
	Oracle   oracle.Client
	Registry *Registry
}

type planPayload struct {
	Steps []struct {
		Goal       string         `json:"goal"`
		ToolHint   string         `json:"tool_hint"`
		ParamsHint map[string]any `json:"params_hint"`
	} `json:"steps"`
}

// Plan asks the oracle for at most four sub-goals and installs them on the
// state. Every failure mode resolves to an empty plan; Plan never errors.
func (p *Planner) Plan(ctx context.Context, st *State) {
	st.Plan = nil
	st.PlanCursor = 0
	if p.Oracle == nil {
		return
	}

	msg := p.renderRequest(st)
	raw, err := p.Oracle.Complete(ctx, plannerSystem, msg)
	if err != nil {
		log.Printf("planner: oracle call failed, continuing without a plan: %v", err)
		return
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		embedded := oracle.ExtractObject(raw)
		if embedded == "" || json.Unmarshal([]byte(embedded), &payload) != nil {
			log.Printf("planner: unparseable plan response, continuing without a plan")
			return
		}
	}

	for _, s := range payload.Steps {
		if len(st.Plan) == maxPlanSteps {
			break
		}
		st.Plan = append(st.Plan, PlanStep{
			Goal:       strings.TrimSpace(s.Goal),
			ToolHint:   strings.TrimSpace(s.ToolHint),
			ParamsHint: s.ParamsHint,
		})
	}
	log.Printf("planner: produced %d steps", len(st.Plan))
}

func (p *Planner) renderRequest(st *State) string {
	file := st.FileName
	if file == "" {
		file = "None"
	}
	return fmt.Sprintf(
		"Task:\n%s\n\nAttached file: %s\n\nAvailable tools:\n%s\nReturn minimal JSON with 1-4 steps.",
		st.Question, file, renderCatalog(p.Registry),
	)
}

func renderCatalog(reg *Registry) string {
	var sb strings.Builder
	for _, entry := range reg.Catalog() {
		desc := entry.Description
		if len(desc) > 160 {
			desc = desc[:160]
		}
		fmt.Fprintf(&sb, "- %s: %s\n", entry.Name, desc)
	}
	return sb.String()
}
