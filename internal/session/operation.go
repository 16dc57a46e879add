package session

// Operation is one step requested for an invocation. The concrete types are Clean,
// SetHint, Chat and Noop.
type Operation interface {
	Name() string
	isOperation()
}

// Clean resets the stored history and ends the run.
type Clean struct{}

// SetHint replaces the stored system hint.
type SetHint struct {
	Text string
}

// Chat sends Prompt as the next user message.
type Chat struct {
	Prompt string
}

// Noop does nothing beyond initialization.
type Noop struct{}

// Name returns "clean".
func (Clean) Name() string { return "clean" }

// Name returns "hint".
func (SetHint) Name() string { return "hint" }

// Name returns "chat".
func (Chat) Name() string { return "chat" }

// Name returns "noop".
func (Noop) Name() string { return "noop" }

func (Clean) isOperation()   {}
func (SetHint) isOperation() {}
func (Chat) isOperation()    {}
func (Noop) isOperation()    {}

// Plan decides the operations for one run from parsed arguments.
// Clean excludes everything else; otherwise a hint update precedes the chat turn.
// A nil hint means none was given; an empty prompt does not chat.
func Plan(clean bool, hint *string, prompt string) []Operation {
	if clean {
		return []Operation{Clean{}}
	}

	var ops []Operation
	if hint != nil {
		ops = append(ops, SetHint{Text: *hint})
	}
	if prompt != "" {
		ops = append(ops, Chat{Prompt: prompt})
	}
	if len(ops) == 0 {
		return []Operation{Noop{}}
	}
	return ops
}
