package services_test

import (
	"context"
	"testing"

	"tubeaudio/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := services.WithAttempt(
		services.WithRequestID(
			services.WithStage(
				services.WithVideoID(context.Background(), "dQw4w9WgXcQ"),
				"download"),
			"batch-7f3a"),
		1)

	checks := []struct {
		name string
		get  func(context.Context) (string, bool)
		want string
	}{
		{"video id", services.VideoIDFromContext, "dQw4w9WgXcQ"},
		{"stage", services.StageFromContext, "download"},
		{"request id", services.RequestIDFromContext, "batch-7f3a"},
	}
	for _, c := range checks {
		if got, ok := c.get(ctx); !ok || got != c.want {
			t.Errorf("%s = %q (%v), want %q", c.name, got, ok, c.want)
		}
	}
	if attempt, ok := services.AttemptFromContext(ctx); !ok || attempt != 1 {
		t.Errorf("attempt = %d (%v), want 1", attempt, ok)
	}
}

func TestContextEmptyValues(t *testing.T) {
	ctx := services.WithVideoID(context.Background(), "")
	ctx = services.WithStage(ctx, "")
	if _, ok := services.VideoIDFromContext(ctx); ok {
		t.Error("blank video id should not be stored")
	}
	if _, ok := services.StageFromContext(ctx); ok {
		t.Error("blank stage should not be stored")
	}
	if _, ok := services.AttemptFromContext(ctx); ok {
		t.Error("attempt should be absent until set")
	}
	if attempt, ok := services.AttemptFromContext(services.WithAttempt(ctx, 0)); !ok || attempt != 0 {
		t.Errorf("attempt 0 should be stored, got %d (%v)", attempt, ok)
	}
}
