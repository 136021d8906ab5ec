package health

import "context"

// APIChecker checks remote API reachability.
type APIChecker interface {
	Health(ctx context.Context) error
}

// CachePinger checks the shared cache backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}
