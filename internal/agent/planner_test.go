package agent

import (
	"context"
	"errors"
	"testing"
)

func TestPlanNilOracle(t *testing.T) {
	p := &Planner{Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)
	st.Plan = []PlanStep{{Goal: "stale"}}

	p.Plan(context.Background(), st)

	if len(st.Plan) != 0 || st.PlanCursor != 0 {
		t.Errorf("Plan() without an oracle left plan=%v cursor=%d", st.Plan, st.PlanCursor)
	}
}

func TestPlanParsesSteps(t *testing.T) {
	raw := `{"steps":[
		{"goal":"compute the product","tool_hint":"math_eval","params_hint":{"expr":"12*8"}},
		{"goal":"verify","tool_hint":""}
	]}`
	p := &Planner{Oracle: &scriptedOracle{responses: []string{raw}}, Registry: NewRegistry()}
	st := NewState("t1", "What is 12 * 8?", "", 6, nil)

	p.Plan(context.Background(), st)

	if len(st.Plan) != 2 {
		t.Fatalf("got %d plan steps, want 2", len(st.Plan))
	}
	if st.Plan[0].ToolHint != "math_eval" || st.Plan[0].Goal != "compute the product" {
		t.Errorf("unexpected first step: %+v", st.Plan[0])
	}
}

func TestPlanCapsSteps(t *testing.T) {
	raw := `{"steps":[{"goal":"1"},{"goal":"2"},{"goal":"3"},{"goal":"4"},{"goal":"5"},{"goal":"6"}]}`
	p := &Planner{Oracle: &scriptedOracle{responses: []string{raw}}, Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)

	p.Plan(context.Background(), st)

	if len(st.Plan) != maxPlanSteps {
		t.Errorf("got %d plan steps, want the cap of %d", len(st.Plan), maxPlanSteps)
	}
}

func TestPlanRecoversEmbeddedJSON(t *testing.T) {
	raw := "Here is my plan:\n{\"steps\":[{\"goal\":\"look it up\",\"tool_hint\":\"wiki_lookup\"}]}\nGood luck!"
	p := &Planner{Oracle: &scriptedOracle{responses: []string{raw}}, Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)

	p.Plan(context.Background(), st)

	if len(st.Plan) != 1 || st.Plan[0].ToolHint != "wiki_lookup" {
		t.Errorf("embedded JSON plan not recovered: %v", st.Plan)
	}
}

func TestPlanToleratesFailures(t *testing.T) {
	tests := []struct {
		name   string
		oracle *scriptedOracle
	}{
		{"oracle error", &scriptedOracle{err: errors.New("boom")}},
		{"garbage output", &scriptedOracle{responses: []string{"not json at all"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Planner{Oracle: tt.oracle, Registry: NewRegistry()}
			st := NewState("t1", "q", "", 6, nil)

			p.Plan(context.Background(), st)

			if len(st.Plan) != 0 {
				t.Errorf("plan after %s = %v, want empty", tt.name, st.Plan)
			}
		})
	}
}
