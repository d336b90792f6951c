// Package config loads tubeaudio.toml.
//
// Load starts from Default, overlays the TOML file found at the explicit
// path, ~/.config/tubeaudio/config.toml or ./tubeaudio.toml, applies the
// TUBEAUDIO_* environment overrides and then normalizes and validates the
// result. Paths in a loaded Config are absolute with "~" expanded.
package config
