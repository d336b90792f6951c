package services

import "context"

// ctxKey is parameterized by the stored type so a lookup can never assert
// the wrong type out of a neighbouring key.
type ctxKey[T any] struct{ name string }

var (
	videoIDKey   = ctxKey[string]{"video_id"}
	stageKey     = ctxKey[string]{"stage"}
	attemptKey   = ctxKey[int]{"attempt"}
	requestIDKey = ctxKey[string]{"request_id"}
)

// withText stores value under key; empty values leave ctx untouched.
func withText(ctx context.Context, key ctxKey[string], value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup[T any](ctx context.Context, key ctxKey[T]) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func lookupText(ctx context.Context, key ctxKey[string]) (string, bool) {
	v, ok := lookup(ctx, key)
	return v, ok && v != ""
}

// WithVideoID annotates ctx with the video being fetched.
func WithVideoID(ctx context.Context, id string) context.Context {
	return withText(ctx, videoIDKey, id)
}

// VideoIDFromContext reports the video id set by WithVideoID.
func VideoIDFromContext(ctx context.Context) (string, bool) {
	return lookupText(ctx, videoIDKey)
}

// WithStage annotates ctx with the pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withText(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return lookupText(ctx, stageKey)
}

// WithAttempt records the zero-based download attempt. Zero is a real value.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}

func AttemptFromContext(ctx context.Context) (int, bool) {
	return lookup(ctx, attemptKey)
}

// WithRequestID annotates ctx with the batch correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withText(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return lookupText(ctx, requestIDKey)
}
