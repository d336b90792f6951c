package logging

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type infoField struct {
	label string
	value string
}

const (
	infoAttrLimit    = 8
	maxInfoValueLen  = 120
	maxErrorValueLen = 200
)

// Keys shown first, in this order, on info-level console lines. Other keys
// follow in the order they were logged.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldDecisionType,
	"decision_result",
	"decision_reason",
	FieldErrorKind,
	"error_message",
	FieldErrorHint,
	FieldImpact,
	"title",
	FieldProgressPercent,
	"phase",
	"subtitles",
	"transfers",
	"file_size_bytes",
	"elapsed",
	"retry_delay",
	"attempts",
}

var fieldLabels = map[string]string{
	FieldEventType:       "Event",
	FieldDecisionType:    "Decision",
	"decision_result":    "Result",
	"decision_reason":    "Reason",
	FieldErrorKind:       "Error Kind",
	FieldErrorHint:       "Hint",
	FieldProgressPercent: "Progress",
	"file_size_bytes":    "Size",
	"retry_delay":        "Retry In",
}

// Keys carried in the line header or only useful when debugging.
var (
	headerKeys    = []string{"", FieldVideoID, FieldStage, FieldComponent, FieldSessionID}
	debugOnlyKeys = []string{FieldCorrelationID, FieldAttempt, FieldProgressMessage, "args", "stderr", "video_url"}
)

// selectInfoFields formats attrs for an info-level line, highlighted keys
// first. limit caps the number of fields (0 means no cap) and withDebug keeps
// debug-only keys and long values. The second result counts what was left out.
func selectInfoFields(attrs []kv, limit int, withDebug bool) ([]infoField, int) {
	ordered := slices.Clone(attrs)
	slices.SortStableFunc(ordered, func(a, b kv) int {
		return cmp.Compare(highlightRank(a.key), highlightRank(b.key))
	})

	fields := make([]infoField, 0, min(len(ordered), infoAttrLimit))
	hidden := 0
	for _, attr := range ordered {
		if slices.Contains(headerKeys, attr.key) {
			continue
		}
		value := formatValueForKey(attr.key, attr.value)
		switch {
		case !withDebug && isDebugOnlyKey(attr.key):
			hidden++
		case !withDebug && tooLongForInfo(attr.key, value):
			hidden++
		case limit > 0 && len(fields) >= limit:
			hidden++
		default:
			fields = append(fields, infoField{label: displayLabel(attr.key), value: value})
		}
	}
	return fields, hidden
}

func highlightRank(key string) int {
	if i := slices.Index(infoHighlightKeys, key); i >= 0 {
		return i
	}
	return len(infoHighlightKeys)
}

// formatValueForKey picks a human format from the key name: byte sizes,
// durations and percentages get units, booleans read as yes/no.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case isByteSizeKey(key) && v.Kind() == slog.KindInt64 && v.Int64() >= 0:
		return humanize.IBytes(uint64(v.Int64()))
	case isByteSizeKey(key) && v.Kind() == slog.KindUint64:
		return humanize.IBytes(v.Uint64())
	case v.Kind() == slog.KindDuration:
		return humanDuration(v.Duration())
	case strings.HasSuffix(key, "_percent") && v.Kind() == slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 1, 64) + "%"
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" || key == "error_message" {
		value = strings.TrimSpace(value)
		if len(value) > maxErrorValueLen {
			value = value[:maxErrorValueLen] + "..."
		}
	}
	return value
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func isByteSizeKey(key string) bool {
	return strings.HasSuffix(key, "_bytes") || key == "size"
}

func isDebugOnlyKey(key string) bool {
	return slices.Contains(debugOnlyKeys, key) ||
		strings.Contains(key, "_path") || strings.Contains(key, "_dir")
}

func tooLongForInfo(key, value string) bool {
	switch key {
	case "error_message", "error", "title":
		return false
	}
	return len(value) > maxInfoValueLen
}

// displayLabel turns "retry_delay" into "Retry In" (from fieldLabels) and
// other snake_case keys into title case.
func displayLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// infoSummaryKey scopes unchanged-field suppression to a video, or to a
// component for lines without one.
func infoSummaryKey(component, videoID string) string {
	if videoID = strings.TrimSpace(videoID); videoID != "" {
		return videoID
	}
	return component
}
