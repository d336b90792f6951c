package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders records for a terminal:
//
//	Jan 02 15:04:05 INFO [fetch] dQw4w9WgXcQ (download) - audio extracted
//	    - Elapsed: 1.5s
//
// Info lines show a curated field list and drop fields whose value has not
// changed since the previous line about the same video. Debug lines list every
// field verbatim.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	bound     []kv
	groups    []string
	seen      map[string]map[string]string
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{
		mu:        &sync.Mutex{},
		w:         w,
		level:     lvl,
		addSource: addSource,
		seen:      make(map[string]map[string]string),
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// subject is the header portion of a console line.
type subject struct {
	component string
	videoID   string
	stage     string
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := make([]kv, len(h.bound), len(h.bound)+record.NumAttrs())
	copy(fields, h.bound)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&fields, h.groups, attr)
		return true
	})
	fields = dedupeKVsByKey(fields)

	var subj subject
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			subj.component = attrString(f.value)
		case FieldVideoID:
			subj.videoID = attrString(f.value)
		case FieldStage:
			subj.stage = attrString(f.value)
		}
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(fields)*32)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeHeader(&buf, record, subj)
	if record.Level < slog.LevelInfo {
		writeRawFields(&buf, fields)
	} else {
		h.writeSummaryFields(&buf, record.Level, subj, fields)
	}
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) writeHeader(buf *bytes.Buffer, record slog.Record, subj subject) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if subj.component != "" {
		buf.WriteString(" [" + subj.component + "]")
	}
	if s := FormatSubject(subj.videoID, subj.stage); s != "" {
		buf.WriteString(" " + s)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(" - " + msg)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			buf.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	buf.WriteByte('\n')
}

func writeRawFields(buf *bytes.Buffer, fields []kv) {
	for _, f := range fields {
		if f.key == FieldComponent {
			continue
		}
		buf.WriteString("    " + f.key + ": " + formatValue(f.value) + "\n")
	}
}

// writeSummaryFields prints the curated field list. Warnings and errors keep
// debug-only keys such as paths and correlation IDs since they are what an
// operator needs to follow up.
func (h *consoleHandler) writeSummaryFields(buf *bytes.Buffer, level slog.Level, subj subject, fields []kv) {
	alert := level > slog.LevelInfo
	limit := infoAttrLimit
	if alert {
		limit = 0
	}
	selected, hidden := selectInfoFields(fields, limit, alert)
	selected = h.dropUnchanged(infoSummaryKey(subj.component, subj.videoID), selected, alert)
	for _, f := range selected {
		buf.WriteString("    - " + f.label + ": " + f.value + "\n")
	}
	switch {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		buf.WriteString("    + " + strconv.Itoa(hidden) + " more fields hidden\n")
	}
}

// dropUnchanged filters fields already printed with the same value for key.
// Alert lines refresh the memory but always print in full.
func (h *consoleHandler) dropUnchanged(key string, fields []infoField, alert bool) []infoField {
	if key == "" || len(fields) == 0 {
		return fields
	}
	last, ok := h.seen[key]
	if !ok {
		last = make(map[string]string)
		h.seen[key] = last
	}
	kept := fields[:0:0]
	for _, f := range fields {
		if prev, ok := last[f.label]; ok && prev == f.value && !alert {
			continue
		}
		last[f.label] = f.value
		kept = append(kept, f)
	}
	return kept
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = make([]kv, len(h.bound), len(h.bound)+len(attrs))
	copy(clone.bound, h.bound)
	for _, attr := range attrs {
		flattenAttr(&clone.bound, h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

type kv struct {
	key   string
	value slog.Value
}

// dedupeKVsByKey keeps the first position of each key with its last value.
func dedupeKVsByKey(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	deduped := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			deduped[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(deduped)
		deduped = append(deduped, attr)
	}
	return deduped
}

// flattenAttr appends attr to dst, expanding groups into dotted keys.
func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, child := range attr.Value.Group() {
			flattenAttr(dst, next, child)
		}
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), attr.Key), ".")
		key = strings.TrimSuffix(key, ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
