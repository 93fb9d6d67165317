package services

import "context"

type contextKey int

const (
	renderIDKey contextKey = iota
	stageKey
	requestIDKey
)

// withValue stores v under key unless v is the zero value.
func withValue[T comparable](ctx context.Context, key contextKey, v T) context.Context {
	var zero T
	if v == zero {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOf[T comparable](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}

// WithRenderID tags ctx with a render history row id. Zero leaves ctx unchanged.
func WithRenderID(ctx context.Context, id int64) context.Context {
	return withValue(ctx, renderIDKey, id)
}

func RenderIDFromContext(ctx context.Context) (int64, bool) {
	return valueOf[int64](ctx, renderIDKey)
}

// WithStage tags ctx with the render stage currently running.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return valueOf[string](ctx, stageKey)
}

// WithRequestID tags ctx with a correlation id: the HTTP request id, or the
// render session id for queued work.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueOf[string](ctx, requestIDKey)
}
