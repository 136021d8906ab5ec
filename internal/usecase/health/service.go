package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the shared cache is down while the API answers.
	Degraded Status = "degraded"
	// Unhealthy indicates the remote API is unreachable.
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

// Cache driver names reported when none is set explicitly.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// CacheDriver names the results cache backend: memory, redis or valkey.
	CacheDriver string
	CheckedAt   time.Time
}

// Service coordinates health checks.
type Service struct {
	api     APIChecker
	cache   CachePinger
	driver  string
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCacheDriver overrides the driver name derived from the pinger.
func WithCacheDriver(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.driver = name
		}
	}
}

// WithTimeout bounds each component check. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithClock replaces time.Now for CheckedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service. cache is nil for the in-memory cache.
func New(api APIChecker, cache CachePinger, opts ...Option) *Service {
	s := &Service{api: api, cache: cache, driver: DriverMemory, now: time.Now}
	if cache != nil {
		s.driver = DriverRedis
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
// An unreachable API is Unhealthy; a failing cache backend is Degraded.
// The in-memory cache has no check entry.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status:      Healthy,
		Checks:      make(map[string]CheckResult, 2),
		CacheDriver: s.driver,
		CheckedAt:   s.now().UTC(),
	}

	r.Checks["api"] = s.run(ctx, s.api.Health)
	if r.Checks["api"] == CheckError {
		r.Status = Unhealthy
	}

	if s.cache != nil {
		r.Checks["cache"] = s.run(ctx, s.cache.Ping)
		if r.Checks["cache"] == CheckError && r.Status == Healthy {
			r.Status = Degraded
		}
	}
	return r
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
