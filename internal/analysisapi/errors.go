package analysisapi

// Op identifies which backend operation failed.
type Op string

const (
	OpAnalyze       Op = "analyze"
	OpAnalyzeSample Op = "analyze_sample"
	OpHealth        Op = "health"
)

// Error is the single failure shape returned by Client. Error() yields the
// human-readable message only; the cause is kept for logs and errors.Is.
type Error struct {
	Op         Op
	StatusCode int
	Message    string
	Err        error
}

func newError(op Op, status int, message string, cause error) *Error {
	return &Error{Op: op, StatusCode: status, Message: message, Err: cause}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
