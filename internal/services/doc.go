// Package services defines shared utilities consumed by the fetch pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, attempt numbers, and
//     correlation identifiers for logging.
//   - The failure taxonomy (Kind) plus the Wrap helper that attaches a
//     classification exactly once, where a failure is first observed.
//
// Engine adapters live in subpackages (see services/ytdlp).
package services
