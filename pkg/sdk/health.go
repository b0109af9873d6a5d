package qacache

import (
	"context"
	"fmt"
	"time"

	healthuc "github.com/kailas-cloud/qacache/internal/usecase/health"
)

// HealthState is the aggregated cache health.
type HealthState string

const (
	// HealthOK means the database and both providers answered.
	HealthOK HealthState = HealthState(healthuc.Healthy)
	// HealthDegraded means a provider failed. Cached answers are still served,
	// misses come back as generation errors.
	HealthDegraded HealthState = HealthState(healthuc.Degraded)
	// HealthError means the record store is unreachable.
	HealthError HealthState = HealthState(healthuc.Unhealthy)
)

// ComponentHealth is the result of one component check.
type ComponentHealth struct {
	Name string
	OK   bool
}

// HealthStatus is the outcome of Health.
type HealthStatus struct {
	State HealthState
	// Components are sorted by name: database, embedding, generation.
	Components []ComponentHealth
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.State == HealthOK }

// Failing lists the names of failed components.
func (h HealthStatus) Failing() []string {
	var out []string
	for _, c := range h.Components {
		if !c.OK {
			out = append(out, c.Name)
		}
	}
	return out
}

// Health checks the database, the embedder and the generator.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{State: HealthState(report.Status)}
	for _, name := range report.Components() {
		h.Components = append(h.Components, ComponentHealth{
			Name: name,
			OK:   report.Checks[name] == healthuc.CheckOK,
		})
	}

	var err error
	if !h.Healthy() {
		err = fmt.Errorf("%s: failing %v", h.State, h.Failing())
	}
	c.obs.observe("health", start, err)
	return h
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
