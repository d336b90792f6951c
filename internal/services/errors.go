package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a fetch failure. A kind is assigned once, where the failure
// is first observed, and is never rewritten by callers further up.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindResourceUnavailable   Kind = "resource_unavailable"
	KindQualityBelowThreshold Kind = "quality_below_threshold"
	KindNetwork               Kind = "network"
	KindFilesystem            Kind = "filesystem"
	KindExtractionFailed      Kind = "extraction_failed"
	KindUnexpected            Kind = "unexpected"
)

// Markers usable with errors.Is for each kind.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrResourceUnavailable   = errors.New("resource unavailable")
	ErrQualityBelowThreshold = errors.New("quality below threshold")
	ErrNetwork               = errors.New("network error")
	ErrFilesystem            = errors.New("filesystem error")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrUnexpected            = errors.New("unexpected error")
)

var kindMarkers = map[Kind]error{
	KindInvalidInput:          ErrInvalidInput,
	KindResourceUnavailable:   ErrResourceUnavailable,
	KindQualityBelowThreshold: ErrQualityBelowThreshold,
	KindNetwork:               ErrNetwork,
	KindFilesystem:            ErrFilesystem,
	KindExtractionFailed:      ErrExtractionFailed,
	KindUnexpected:            ErrUnexpected,
}

// Kinds lists every classification in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindInvalidInput,
		KindResourceUnavailable,
		KindQualityBelowThreshold,
		KindNetwork,
		KindFilesystem,
		KindExtractionFailed,
		KindUnexpected,
	}
}

// Valid reports whether k is a known classification.
func (k Kind) Valid() bool {
	_, ok := kindMarkers[k]
	return ok
}

// Permanent reports whether retrying cannot change the outcome.
func (k Kind) Permanent() bool {
	switch k {
	case KindInvalidInput, KindResourceUnavailable, KindQualityBelowThreshold, KindFilesystem:
		return true
	default:
		return false
	}
}

// Marker returns the sentinel error for the kind.
func (k Kind) Marker() error {
	if marker, ok := kindMarkers[k]; ok {
		return marker
	}
	return ErrUnexpected
}

func (k Kind) String() string { return string(k) }

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Error is a classified failure carrying stage context.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Marker(), e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Marker(), e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind's marker so errors.Is(err, ErrNetwork) works.
func (e *Error) Is(target error) bool {
	return target == e.Kind.Marker()
}

// ErrorKind implements ErrorClassifier.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// Message returns the human readable part of the error without the kind prefix.
func (e *Error) Message() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

// Wrap builds an error message that includes stage context while tagging it
// with kind for later retry and result classification. An error that already
// carries a classification keeps it.
func Wrap(kind Kind, stage, operation, message string, err error) error {
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	if !kind.Valid() {
		kind = KindUnexpected
	}
	return &Error{
		Kind:   kind,
		Detail: buildDetail(stage, operation, message),
		Err:    err,
	}
}

// KindOf returns the classification attached to err. Errors without one are
// unexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		if kind := Kind(classifier.ErrorKind()); kind.Valid() {
			return kind
		}
	}
	return KindUnexpected
}

// Classified reports whether err already carries a known classification.
func Classified(err error) bool {
	var classifier ErrorClassifier
	if !errors.As(err, &classifier) {
		return false
	}
	return Kind(classifier.ErrorKind()).Valid()
}

// MessageOf returns a human readable message for err suitable for results.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Message()
	}
	return err.Error()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
