package agent

import "testing"

func TestNewStateDefaults(t *testing.T) {
	st := NewState("t1", "q", "clip.mp3", 6, []string{"asr"})

	if !st.EarlyStop {
		t.Error("EarlyStop should default to true")
	}
	if st.AutoFinishAfterTool {
		t.Error("AutoFinishAfterTool should default to false")
	}
	if st.Step != 0 || st.PlanCursor != 0 || st.NoProgressCount != 0 {
		t.Error("counters must start at zero")
	}
	if st.LastTurn() != nil {
		t.Error("LastTurn() on a fresh state must be nil")
	}
}

func TestLastTurn(t *testing.T) {
	st := NewState("t1", "q", "", 6, nil)
	st.Scratchpad = []Turn{{Action: "first"}, {Action: "second"}}

	if got := st.LastTurn(); got == nil || got.Action != "second" {
		t.Errorf("LastTurn() = %+v, want the second turn", got)
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name     string
		question string
		terminal *Finish
		turns    []Turn
		want     string
	}{
		{
			name:     "terminal answer is normalized",
			question: "How many are left?",
			terminal: &Finish{Answer: "There are 3 left."},
			want:     "3",
		},
		{
			name:     "no terminal falls back to last observation",
			question: "Who wrote it?",
			turns:    []Turn{{Observation: "Jane Austen"}},
			want:     "Jane Austen",
		},
		{
			name:     "nothing at all yields empty answer",
			question: "Who wrote it?",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState("t1", tt.question, "", 6, nil)
			st.Scratchpad = tt.turns
			Finalize(st, tt.terminal)
			if st.Answer != tt.want {
				t.Errorf("Finalize() answer = %q, want %q", st.Answer, tt.want)
			}
		})
	}
}
