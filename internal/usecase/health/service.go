package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a provider failed; cached answers may still be served.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
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

const checkTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Components returns the checked component names in stable order.
func (r Report) Components() []string {
	names := make([]string, 0, len(r.Checks))
	for n := range r.Checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	checkers map[string]Checker
}

// New creates a Service. Additional named checkers may be registered with With.
func New(db DBPinger) *Service {
	return &Service{db: db, checkers: make(map[string]Checker)}
}

// With registers a named checker. Nil checkers are ignored.
func (s *Service) With(name string, c Checker) *Service {
	if c != nil {
		s.checkers[name] = c
	}
	return s
}

// Check runs all health checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.checkers)+1)
	)
	set := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		checks[name] = result(err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		set("database", s.db.Ping(ctx))
	}()
	for name, c := range s.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set(name, c.HealthCheck(ctx))
		}()
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
