package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockAPIChecker struct {
	err error
}

func (m *mockAPIChecker) Health(_ context.Context) error { return m.err }

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockAPIChecker{}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["api"] != CheckOK {
		t.Errorf("expected api %q, got %q", CheckOK, r.Checks["api"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_APIError(t *testing.T) {
	svc := New(&mockAPIChecker{err: errors.New("conn refused")}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["api"] != CheckError {
		t.Errorf("expected api %q, got %q", CheckError, r.Checks["api"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockAPIChecker{}, &mockCachePinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockAPIChecker{err: errors.New("api down")},
		&mockCachePinger{err: errors.New("cache down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["api"] != CheckError || r.Checks["cache"] != CheckError {
		t.Errorf("checks = %v", r.Checks)
	}
}

func TestCheck_MemoryCache(t *testing.T) {
	svc := New(&mockAPIChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent without a shared backend")
	}
}

func TestCheck_CacheDriver(t *testing.T) {
	tests := []struct {
		name  string
		cache CachePinger
		opts  []Option
		want  string
	}{
		{"memory by default", nil, nil, DriverMemory},
		{"shared store is redis", &mockCachePinger{}, nil, DriverRedis},
		{"explicit valkey", &mockCachePinger{}, []Option{WithCacheDriver("valkey")}, "valkey"},
		{"empty name ignored", nil, []Option{WithCacheDriver("")}, DriverMemory},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&mockAPIChecker{}, tc.cache, tc.opts...).Check(context.Background())
			if r.CacheDriver != tc.want {
				t.Errorf("CacheDriver = %q, want %q", r.CacheDriver, tc.want)
			}
		})
	}
}

func TestCheck_CheckedAt(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	r := New(&mockAPIChecker{}, nil, WithClock(func() time.Time { return at })).Check(context.Background())

	if !r.CheckedAt.Equal(at) || r.CheckedAt.Location() != time.UTC {
		t.Errorf("CheckedAt = %v", r.CheckedAt)
	}
}

type blockingPinger struct{}

func (blockingPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(&mockAPIChecker{}, blockingPinger{}, WithTimeout(10*time.Millisecond))

	done := make(chan Report, 1)
	go func() { done <- svc.Check(context.Background()) }()

	select {
	case r := <-done:
		if r.Status != Degraded || r.Checks["cache"] != CheckError {
			t.Errorf("report = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Check did not honor the timeout")
	}
}
