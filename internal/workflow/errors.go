package workflow

import "errors"

var (
	ErrEmptyResume     = errors.New("resume text is empty")
	ErrInvalidEmail    = errors.New("user email is invalid")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
)

const (
	msgEmptyResume     = "Please provide resume text"
	msgUnsupportedFile = "Please upload a .txt file"
	msgFileTooLarge    = "File is too large; please upload a .txt file under 1 MB"
)

// Warning is a user-facing input problem. It never changes session state
// and never reaches the backend.
type Warning struct {
	Message string
	Err     error
}

func (w *Warning) Error() string {
	return w.Message
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// AsWarning reports whether err is a *Warning and returns it.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}
