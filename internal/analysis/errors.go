package analysis

import "errors"

var (
	// ErrAnalysisInFlight is returned when a submission arrives while another
	// one for the same session has not completed.
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	// ErrSessionGone is returned by a StateStore when the session was torn
	// down; late responses for it are discarded.
	ErrSessionGone = errors.New("session no longer exists")
)
