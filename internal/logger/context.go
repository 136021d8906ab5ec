package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithRequest returns a context carrying base tagged with the request id.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, base.With(zap.String("request_id", requestID)))
}

// From returns the request logger, or a no-op logger outside a request.
func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
