// Package ytdlp mediates access to the yt-dlp CLI used for metadata lookups
// and audio extraction.
//
// It normalizes command invocation, decodes the JSON metadata yt-dlp emits,
// parses --newline progress output, and converts stderr "ERROR:" lines into
// EngineError values with a structured Code so callers never have to match
// free text themselves.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// yt-dlp so timeouts and error parsing remain consistent.
package ytdlp
