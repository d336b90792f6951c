package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tubeaudio/internal/fetch"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label  string
	colors text.Colors
}{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed, text.Bold}},
}

// Width of the label column in doctor output.
const statusLabelWidth = 20

var titleCaser = cases.Title(language.English)

// renderStatusLine formats one doctor line: "  yt-dlp:   [OK] /usr/bin/yt-dlp".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + statusStyles[kind].label + "]"
	if message != "" {
		badge += " " + message
	}
	return paint(fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", badge), kind, colorize)
}

func paint(value string, kind statusKind, colorize bool) string {
	if !colorize {
		return value
	}
	return statusStyles[kind].colors.Sprint(value)
}

func fetchStatusKind(status fetch.Status) statusKind {
	switch status {
	case fetch.StatusSuccess:
		return statusOK
	case fetch.StatusSkipped:
		return statusWarn
	case fetch.StatusError:
		return statusError
	default:
		return statusInfo
	}
}

// statusLabel renders "success" as "Success", colored when enabled.
func statusLabel(status fetch.Status, colorize bool) string {
	return paint(titleCaser.String(string(status)), fetchStatusKind(status), colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(line))
	return []string{paint(line, statusInfo, colorize), paint(rule, statusInfo, colorize)}
}

// shouldColorize reports whether w is a terminal and NO_COLOR is unset.
func shouldColorize(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
