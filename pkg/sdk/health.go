package nyaybodh

import (
	"context"
	"log/slog"
	"time"

	healthuc "github.com/nyaybodh/nyaybodh/internal/usecase/health"
)

// HealthStatus reports whether the remote case API and the results cache are usable.
type HealthStatus struct {
	Status      string            // "ok", "degraded" or "error"
	Checks      map[string]string // "api", and "cache" for a shared store
	CacheDriver string            // "memory" or "redis"
	CheckedAt   time.Time
}

// OK reports whether searches can be served. A degraded cache still counts:
// searches then go to the API uncached.
func (h HealthStatus) OK() bool {
	return h.Status == string(healthuc.Healthy) || h.Status == string(healthuc.Degraded)
}

// SharedCache reports whether results live in an external store.
func (h HealthStatus) SharedCache() bool {
	return h.CacheDriver != "" && h.CacheDriver != healthuc.DriverMemory
}

// Health checks the remote API and, with WithRedisCache, the cache store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	h := HealthStatus{
		Status:      string(report.Status),
		Checks:      checks,
		CacheDriver: report.CacheDriver,
		CheckedAt:   report.CheckedAt,
	}

	var err error
	if !h.OK() {
		err = errUnhealthy
	}
	c.obs.observe("health", start, err, slog.String("cache_driver", h.CacheDriver))
	return h
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
