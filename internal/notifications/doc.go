// Package notifications delivers download events via ntfy.
//
// The topic comes from config.toml or TUBEAUDIO_NTFY_TOPIC; without one the
// service is a no-op. on_success and on_error gate which events are sent.
package notifications
