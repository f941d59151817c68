package analysis

const defaultFailureMessage = "Analysis failed"

// Phase names the controller state derived from a State snapshot.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseReportReady Phase = "report_ready"
	PhaseFailed      Phase = "failed"
)

// State is the per-session snapshot owned by the Controller. Transitions
// return a whole new value; Result and Error are never both set.
type State struct {
	Result      *Result `json:"result,omitempty"`
	IsAnalyzing bool    `json:"is_analyzing"`
	Error       string  `json:"error,omitempty"`
}

// Phase reports where the snapshot sits in the submission lifecycle.
func (s State) Phase() Phase {
	switch {
	case s.IsAnalyzing:
		return PhaseAnalyzing
	case s.Result != nil:
		return PhaseReportReady
	case s.Error != "":
		return PhaseFailed
	default:
		return PhaseIdle
	}
}

// Begin starts a submission, clearing any previous result or error.
func (s State) Begin() (State, error) {
	if s.IsAnalyzing {
		return s, ErrAnalysisInFlight
	}
	return State{IsAnalyzing: true}, nil
}

// Succeed stores the result and ends the submission.
func (s State) Succeed(result *Result) State {
	return State{Result: result}
}

// Fail stores the failure message and ends the submission. An empty message
// is replaced so the snapshot still reads as failed.
func (s State) Fail(message string) State {
	if message == "" {
		message = defaultFailureMessage
	}
	return State{Error: message}
}
