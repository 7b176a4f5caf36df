package estaterag

import (
	"context"

	healthuc "github.com/kailas-cloud/estaterag/internal/usecase/health"
)

// HealthStatus is the outcome of Client.Health.
type HealthStatus struct {
	// Status is "ok", "degraded" (a provider is failing) or "error" (storage is down).
	Status string
	// Checks maps "database", "index" and "embedding" to "ok" or "error".
	// "index" reports "fallback" when queries run on the cosine scan path.
	Checks map[string]string
}

// OK reports whether the client can ingest and answer queries.
func (h HealthStatus) OK() bool {
	return h.Status == string(healthuc.Healthy)
}

// Health probes storage, the search index and the embedding provider.
func (c *Client) Health(ctx context.Context) (h HealthStatus) {
	report := c.healthSvc.Check(ctx)
	h = HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for _, name := range report.Names() {
		h.Checks[name] = string(report.Checks[name])
	}
	if c.obs != nil && c.obs.logger != nil && !h.OK() {
		c.obs.logger.Warn("health check failed", "status", h.Status, "checks", h.Checks)
	}
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
