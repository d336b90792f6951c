package logging

import (
	"context"
	"log/slog"
	"slices"
)

// FieldSessionID is the standardized structured logging key for CLI invocation identifiers.
const FieldSessionID = "session_id"

// sessionHandler stamps every record with the invocation's session ID. Records
// logged through the *Context methods also pick up the video ID and
// correlation ID carried by ctx, unless the logger already holds those keys.
type sessionHandler struct {
	next      slog.Handler
	sessionID string
	bound     []string
	grouped   bool
}

func newSessionHandler(next slog.Handler, sessionID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &sessionHandler{next: next, sessionID: sessionID}
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.grouped {
		present := h.bound
		record.Attrs(func(a slog.Attr) bool {
			present = append(present, a.Key)
			return true
		})
		for _, field := range ContextFields(ctx) {
			if field.Key == FieldStage || field.Key == FieldAttempt || slices.Contains(present, field.Key) {
				continue
			}
			record.AddAttrs(field)
		}
	}
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	return h.next.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	if !h.grouped {
		clone.bound = slices.Clone(h.bound)
		for _, a := range attrs {
			clone.bound = append(clone.bound, a.Key)
		}
	}
	return &clone
}

// WithGroup stops context lifting: attributes added after a group would land
// inside it and no longer line up with the top-level keys.
func (h *sessionHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.grouped = name != "" || h.grouped
	return &clone
}
