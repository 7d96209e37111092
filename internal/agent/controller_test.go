package agent

import (
	"context"
	"errors"
	"testing"
)

// scriptedOracle replays canned completions in order, repeating the last one.
type scriptedOracle struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedOracle) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func TestDecideAutoFinish(t *testing.T) {
	c := &Controller{Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)
	st.AutoFinishAfterTool = true
	st.Scratchpad = []Turn{{Action: "count", Observation: "42", Success: true}}

	finish, ok := c.Decide(context.Background(), st).(Finish)
	if !ok {
		t.Fatal("Decide() did not auto-finish on a trusted successful turn")
	}
	if finish.Answer != "42" {
		t.Errorf("auto-finish answer = %q, want the last observation", finish.Answer)
	}
}

func TestDecideBudgetExhausted(t *testing.T) {
	c := &Controller{Registry: NewRegistry()}
	st := NewState("t1", "q", "", 2, nil)
	st.Step = 2

	finish, ok := c.Decide(context.Background(), st).(Finish)
	if !ok {
		t.Fatal("Decide() did not finish at the step budget")
	}
	if finish.Answer != "Max steps reached." {
		t.Errorf("budget answer = %q", finish.Answer)
	}
}

func TestDecideNilOracle(t *testing.T) {
	c := &Controller{Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)

	if _, ok := c.Decide(context.Background(), st).(Finish); !ok {
		t.Error("Decide() without an oracle must finish with a diagnostic")
	}
}

func TestDecideOracleError(t *testing.T) {
	c := &Controller{
		Oracle:   &scriptedOracle{err: errors.New("timeout")},
		Registry: NewRegistry(),
	}
	st := NewState("t1", "q", "", 6, nil)

	if _, ok := c.Decide(context.Background(), st).(Finish); !ok {
		t.Error("Decide() must degrade an oracle error into a Finish")
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Decision
	}{
		{
			name: "clean tool call",
			raw:  `{"tool":"math_eval","params":{"expr":"2+2"},"why":"arithmetic"}`,
			want: ToolCall{Name: "math_eval", Params: map[string]any{"expr": "2+2"}, Rationale: "arithmetic"},
		},
		{
			name: "clean finish",
			raw:  `{"finish":"4","why":"done"}`,
			want: Finish{Answer: "4", Rationale: "done"},
		},
		{
			name: "json buried in prose",
			raw:  "Sure thing!\n```json\n{\"finish\":\"42\",\"why\":\"ok\"}\n```",
			want: Finish{Answer: "42", Rationale: "ok"},
		},
		{
			name: "empty finish string is terminal",
			raw:  `{"finish":"","why":"nothing"}`,
			want: Finish{Answer: "", Rationale: "nothing"},
		},
		{
			name: "garbage",
			raw:  "no json here",
			want: Finish{Answer: "Controller did not return JSON.", Rationale: "Parse error."},
		},
		{
			name: "neither field",
			raw:  `{"why":"confused"}`,
			want: Finish{Answer: "Controller returned neither a tool nor a final answer.", Rationale: "Parse error."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDecision(tt.raw)
			switch want := tt.want.(type) {
			case Finish:
				gotF, ok := got.(Finish)
				if !ok || gotF != want {
					t.Errorf("parseDecision() = %#v, want %#v", got, want)
				}
			case ToolCall:
				gotT, ok := got.(ToolCall)
				if !ok || gotT.Name != want.Name || gotT.Rationale != want.Rationale {
					t.Errorf("parseDecision() = %#v, want %#v", got, want)
				}
			}
		})
	}
}

func TestDecideDelegatesToOracle(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{`{"tool":"count","params":{},"why":"count things"}`}}
	c := &Controller{Oracle: oracle, Registry: NewRegistry()}
	st := NewState("t1", "q", "", 6, nil)

	call, ok := c.Decide(context.Background(), st).(ToolCall)
	if !ok {
		t.Fatal("Decide() did not return the oracle's tool call")
	}
	if call.Name != "count" {
		t.Errorf("tool = %q, want count", call.Name)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle called %d times, want 1", oracle.calls)
	}
}
