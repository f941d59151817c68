package analysis

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"resume-seo-web/internal/shared/telemetry"
)

// Analyzer is the subset of the API client the controller dispatches to.
type Analyzer interface {
	SubmitText(ctx context.Context, resumeText string, userEmail *string) (*Result, error)
	SubmitSample(ctx context.Context) (*Result, error)
}

// StateStore applies a transition to a session's State atomically. fn sees
// the current snapshot and returns its replacement; returning an error
// leaves the stored state untouched.
type StateStore interface {
	UpdateState(ctx context.Context, sessionID string, fn func(State) (State, error)) (State, error)
}

// Event is published after every committed transition.
type Event struct {
	SessionID string
	Mode      string
	From      Phase
	To        Phase
	State     State
	// Duration is set on completion events.
	Duration time.Duration
	// Rejected marks a submission refused because another was in flight.
	Rejected bool
}

// Controller sequences submissions for page sessions. It is the only writer
// of State; everything else reads snapshots.
type Controller struct {
	analyzer Analyzer
	store    StateStore
	now      func() time.Time

	mu        sync.RWMutex
	observers []func(Event)
}

// NewController constructs a Controller.
func NewController(analyzer Analyzer, store StateStore) *Controller {
	return &Controller{
		analyzer: analyzer,
		store:    store,
		now:      time.Now,
	}
}

// Subscribe registers fn to receive every committed transition.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Submit runs one submission to completion and returns the final snapshot.
// Backend failures end up in State.Error and are not returned; the error
// result is reserved for rejected submissions (ErrAnalysisInFlight) and
// storage failures.
func (c *Controller) Submit(ctx context.Context, sessionID string, sub Submission) (State, error) {
	var from Phase
	started, err := c.store.UpdateState(ctx, sessionID, func(cur State) (State, error) {
		from = cur.Phase()
		return cur.Begin()
	})
	if err != nil {
		if errors.Is(err, ErrAnalysisInFlight) {
			telemetry.Warn(ctx, "analysis.rejected", map[string]any{
				"session_id": sessionID,
				"mode":       sub.Mode(),
			})
			c.publish(Event{SessionID: sessionID, Mode: sub.Mode(), From: PhaseAnalyzing, To: PhaseAnalyzing, State: started, Rejected: true})
		}
		return started, err
	}
	c.publish(Event{SessionID: sessionID, Mode: sub.Mode(), From: from, To: PhaseAnalyzing, State: started})

	// The backend call is not cancellable; a client hanging up must not
	// leave the session stuck in the analyzing phase.
	callCtx := context.WithoutCancel(ctx)
	begin := c.now()
	result, callErr := c.dispatch(callCtx, sub)
	elapsed := c.now().Sub(begin)

	final, err := c.store.UpdateState(callCtx, sessionID, func(cur State) (State, error) {
		if callErr != nil {
			return cur.Fail(callErr.Error()), nil
		}
		return cur.Succeed(result), nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionGone) {
			telemetry.Info(callCtx, "analysis.discarded", map[string]any{
				"session_id": sessionID,
				"mode":       sub.Mode(),
			})
			return State{}, err
		}
		telemetry.Error(callCtx, "analysis.state_update_failed", map[string]any{
			"session_id": sessionID,
			"error":      err,
		})
		return State{}, err
	}

	fields := map[string]any{
		"session_id":  sessionID,
		"mode":        sub.Mode(),
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	}
	if callErr != nil {
		fields["error"] = callErr
		telemetry.Warn(callCtx, "analysis.failed", fields)
	} else {
		telemetry.Info(callCtx, "analysis.completed", fields)
	}
	c.publish(Event{SessionID: sessionID, Mode: sub.Mode(), From: PhaseAnalyzing, To: final.Phase(), State: final, Duration: elapsed})
	return final, nil
}

func (c *Controller) dispatch(ctx context.Context, sub Submission) (*Result, error) {
	if sub.Sample {
		return c.analyzer.SubmitSample(ctx)
	}
	return c.analyzer.SubmitText(ctx, sub.Request.ResumeText, sub.Request.UserEmail)
}

func (c *Controller) publish(ev Event) {
	c.mu.RLock()
	observers := slices.Clone(c.observers)
	c.mu.RUnlock()
	for _, fn := range observers {
		fn(ev)
	}
}
