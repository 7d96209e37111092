package agent

// Decision is the controller's (or executor's) verdict for one iteration.
// It is a closed sum: either a ToolCall or a Finish. Consumers switch on the
// concrete type; there is no "which key is present" ambiguity.
type Decision interface {
	decision()
}

// ToolCall asks the executor to dispatch a named capability.
type ToolCall struct {
	Name      string
	Params    map[string]any
	Rationale string
}

// Finish terminates the loop with a raw answer for the finalizer.
type Finish struct {
	Answer    string
	Rationale string
}

func (ToolCall) decision() {}
func (Finish) decision()   {}
