// Package health aggregates the liveness of the backing stores.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks across the stores the stacker
// depends on.
type Service struct {
	checks []check
}

// New creates a Service. A nil pinger leaves its check out of the report.
func New(search, database, cache Pinger) *Service {
	s := &Service{}
	s.add("search", search)
	s.add("database", database)
	s.add("cache", cache)
	return s
}

func (s *Service) add(name string, p Pinger) {
	if p != nil {
		s.checks = append(s.checks, check{name: name, pinger: p})
	}
}

// Check pings every store. One failure degrades the report; all of them
// failing marks it unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	failed := 0
	for _, c := range s.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			failed++
		} else {
			checks[c.name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
