package agent

import "github.com/ChamsBouzaiene/solvr/internal/normalize"

// Finalize converts the terminal decision (or, defensively, the last
// observation when no Finish was ever produced) into the normalized answer.
// This is the single point where answer-shape rules bind the visible result.
func Finalize(st *State, terminal *Finish) {
	raw := ""
	switch {
	case terminal != nil:
		raw = terminal.Answer
	case st.LastTurn() != nil:
		raw = st.LastTurn().Observation
	}
	st.Answer = normalize.Answer(st.Question, raw)
}
