package health

import (
	"context"
	"sort"
)

// Check probes one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

// Service runs the process's own liveness checks. The analysis backend is
// deliberately not one of them; it has its own proxy endpoint.
type Service struct {
	checks map[string]Check
}

// NewService constructs a health service over the named checks.
func NewService(checks map[string]Check) *Service {
	return &Service{checks: checks}
}

// Report is the /health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check and reports the combined result.
func (s *Service) Status(ctx context.Context) Report {
	rep := Report{OK: true}
	if len(s.checks) == 0 {
		return rep
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	rep.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			rep.OK = false
			rep.Checks[name] = err.Error()
			continue
		}
		rep.Checks[name] = "ok"
	}
	return rep
}
