// Package main hosts the tubeaudio CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, builds the slog logger, wires
// the yt-dlp client into the fetch pipeline, and renders results as tables
// or JSON. Everything a command does beyond argument handling lives in the
// internal packages; keep it that way so the pipeline stays usable without
// the CLI.
package main
