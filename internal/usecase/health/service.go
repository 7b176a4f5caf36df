// Package health aggregates storage, index and provider checks.
package health

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a provider is failing; stored data is still reachable.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckFallback indicates searches run on the cosine scan path.
	CheckFallback CheckResult = "fallback"
)

const (
	checkDatabase = "database"
	checkIndex    = "index"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type provider struct {
	name    string
	checker ProviderChecker
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexProber
	providers []provider
}

// New creates a Service. index can be nil.
func New(db DBPinger, index IndexProber) *Service {
	return &Service{db: db, index: index}
}

// WithProvider adds a named provider check. nil checkers are ignored.
func (s *Service) WithProvider(name string, c ProviderChecker) *Service {
	if c != nil {
		s.providers = append(s.providers, provider{name: name, checker: c})
	}
	return s
}

// Check runs health checks against all components. A missing index never
// degrades status: searches fall back to a scan.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2+len(s.providers))

	dbOK := s.db.Ping(ctx) == nil
	if dbOK {
		checks[checkDatabase] = CheckOK
	} else {
		checks[checkDatabase] = CheckError
	}

	if s.index != nil && dbOK {
		if ok, err := s.index.IndexReady(ctx); err == nil && ok {
			checks[checkIndex] = CheckOK
		} else {
			checks[checkIndex] = CheckFallback
		}
	}

	// Providers are remote APIs; probe them in parallel.
	results := make([]CheckResult, len(s.providers))
	var g errgroup.Group
	for i, p := range s.providers {
		g.Go(func() error {
			results[i] = CheckOK
			if p.checker.HealthCheck(ctx) != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	for i, p := range s.providers {
		checks[p.name] = results[i]
		if results[i] == CheckError {
			status = Degraded
		}
	}
	if !dbOK {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

// Names returns the check names in a stable order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Checks))
	for n := range r.Checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
