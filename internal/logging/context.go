package logging

import (
	"context"
	"log/slog"

	"tubeaudio/internal/services"
)

// Structured field keys shared by every package that logs.
const (
	FieldComponent     = "component"
	FieldVideoID       = "video_id"
	FieldStage         = "stage"
	FieldAttempt       = "attempt" // zero-based
	FieldCorrelationID = "correlation_id"

	FieldEventType    = "event_type"
	FieldErrorHint    = "error_hint" // operator's next step
	FieldErrorKind    = "error_kind"
	FieldDecisionType = "decision_type"

	FieldProgressPercent = "progress_percent"
	FieldProgressMessage = "progress_message" // raw engine line
)

// ContextFields returns the video, stage, attempt and correlation values
// carried by ctx, in that order, skipping the ones that are unset.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	add := func(key, value string, ok bool) {
		if ok {
			fields = append(fields, slog.String(key, value))
		}
	}
	id, ok := services.VideoIDFromContext(ctx)
	add(FieldVideoID, id, ok)
	stage, ok := services.StageFromContext(ctx)
	add(FieldStage, stage, ok)
	if attempt, ok := services.AttemptFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldAttempt, attempt))
	}
	rid, ok := services.RequestIDFromContext(ctx)
	add(FieldCorrelationID, rid, ok)
	return fields
}

// WithContext binds ContextFields(ctx) to logger. A nil logger yields a no-op one.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
