package workflow

// Phase represents the current stage of a biography generation workflow.
type Phase int

const (
	// PhaseIdle is the initial state: no request made yet, or the last
	// result is on display with nothing in flight.
	PhaseIdle Phase = iota
	// PhaseLoading means a generation request is in flight.
	PhaseLoading
	// PhaseSuccess means the latest request produced a biography.
	PhaseSuccess
	// PhaseError means the latest request failed; the message is in
	// State.ErrorMessage.
	PhaseError
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}
