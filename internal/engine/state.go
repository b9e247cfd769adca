package engine

// State is the engine's lifecycle position.
type State int

const (
	// Unconfigured holds no session.
	Unconfigured State = iota
	// Configured holds a session and knowledge and accepts questions.
	Configured
	// AwaitingInference is held while the inference process runs.
	AwaitingInference
	// ExecutingQuery is held while SQL runs against the backend.
	ExecutingQuery
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case AwaitingInference:
		return "awaiting_inference"
	case ExecutingQuery:
		return "executing_query"
	}
	return "unknown"
}
