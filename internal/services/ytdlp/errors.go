package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code is the structured category of an engine failure.
type Code string

const (
	CodeUnknown     Code = "unknown"
	CodeUnavailable Code = "unavailable"
	CodeNetwork     Code = "network"
	CodeTimeout     Code = "timeout"
	CodeNoOutput    Code = "no_output"
	CodeBadMetadata Code = "bad_metadata"
	CodeMissingTool Code = "missing_tool"
)

// EngineError is returned whenever yt-dlp fails.
type EngineError struct {
	Code    Code
	Message string
	Stderr  []string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("yt-dlp %s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("yt-dlp %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("yt-dlp %s", e.Code)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Phrases yt-dlp prints for content that will never become downloadable.
// The bare keywords come first and win over any network phrase in the same
// message, so "Unable to download webpage: this video is private" is not
// retried.
var unavailablePhrases = []string{
	"private",
	"unavailable",
	"deleted",
	"removed",
	"account associated with this video has been terminated",
	"members-only",
	"sign in to confirm your age",
	"not available in your country",
	"copyright claim",
	"premieres in",
}

// Phrases yt-dlp and its urllib stack print for connectivity failures.
var networkPhrases = []string{
	"unable to download webpage",
	"urlopen error",
	"connection reset",
	"connection refused",
	"temporary failure in name resolution",
	"name or service not known",
	"timed out",
	"http error 429",
	"http error 5",
	"remote end closed connection",
	"incompleteread",
}

// newEngineError builds an EngineError from a failed invocation.
func newEngineError(runErr error, stderr []string) *EngineError {
	message := lastErrorLine(stderr)
	return &EngineError{
		Code:    codeFor(runErr, message),
		Message: message,
		Stderr:  stderr,
		Err:     runErr,
	}
}

func codeFor(runErr error, message string) Code {
	switch {
	case errors.Is(runErr, context.DeadlineExceeded):
		return CodeTimeout
	case isNotFound(runErr):
		return CodeMissingTool
	}
	lower := strings.ToLower(message)
	for _, phrase := range unavailablePhrases {
		if strings.Contains(lower, phrase) {
			return CodeUnavailable
		}
	}
	for _, phrase := range networkPhrases {
		if strings.Contains(lower, phrase) {
			return CodeNetwork
		}
	}
	return CodeUnknown
}

// lastErrorLine returns the final "ERROR:" line with the prefix and extractor
// tag removed, or the last non-empty stderr line.
func lastErrorLine(stderr []string) string {
	var fallback string
	for i := len(stderr) - 1; i >= 0; i-- {
		line := strings.TrimSpace(stderr[i])
		if line == "" {
			continue
		}
		if fallback == "" {
			fallback = line
		}
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return trimExtractorTag(strings.TrimSpace(rest))
		}
	}
	return fallback
}

// trimExtractorTag drops a leading "[youtube] <id>: " prefix.
func trimExtractorTag(msg string) string {
	if !strings.HasPrefix(msg, "[") {
		return msg
	}
	end := strings.Index(msg, "]")
	if end < 0 {
		return msg
	}
	rest := strings.TrimSpace(msg[end+1:])
	if colon := strings.Index(rest, ": "); colon >= 0 && !strings.Contains(rest[:colon], " ") {
		rest = rest[colon+2:]
	}
	return rest
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") || strings.Contains(msg, "no such file or directory")
}
