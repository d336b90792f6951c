package preflight

import (
	"context"
	"slices"

	"tubeaudio/internal/config"
)

// Result is one doctor line: a named check and what it found.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Versioner reports the extraction engine version.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// RunAll executes the filesystem and service checks for the given config.
// The engine check is skipped when engine is nil; the ntfy check is skipped
// when no topic is configured.
func RunAll(ctx context.Context, cfg *config.Config, engine Versioner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckOutputDirectory("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	if engine != nil {
		results = append(results, CheckExtractor(ctx, engine))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	return slices.ContainsFunc(results, func(r Result) bool { return !r.Passed })
}
