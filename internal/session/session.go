package session

import (
	"context"
	"errors"
	"time"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/workflow"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle page session lives.
const DefaultTTL = 30 * time.Minute

// Session is everything the client remembers for one browser page session.
type Session struct {
	ID        string            `json:"id"`
	Draft     workflow.Draft    `json:"draft"`
	State     analysis.State    `json:"state"`
	Profile   *identity.Profile `json:"profile,omitempty"`
	Warning   string            `json:"warning,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// TakeWarning returns and clears the pending flash warning.
func (s *Session) TakeWarning() string {
	w := s.Warning
	s.Warning = ""
	return w
}

// Store persists sessions for their page lifetime only.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// Update runs fn against the stored session atomically. When fn fails
	// nothing is written and the unmodified session is returned with the
	// error.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// StateStore exposes a Store to the analysis controller.
type StateStore struct {
	Store Store
}

func (s StateStore) UpdateState(ctx context.Context, sessionID string, fn func(analysis.State) (analysis.State, error)) (analysis.State, error) {
	sess, err := s.Store.Update(ctx, sessionID, func(sess *Session) error {
		next, err := fn(sess.State)
		if err != nil {
			return err
		}
		sess.State = next
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return analysis.State{}, analysis.ErrSessionGone
	}
	if sess == nil {
		return analysis.State{}, err
	}
	return sess.State, err
}
