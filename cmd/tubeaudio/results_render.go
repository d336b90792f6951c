package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"tubeaudio/internal/fetch"
)

const (
	maxTitleWidth  = 40
	maxDetailWidth = 60
)

func renderResults(results []fetch.Result, colorize bool) string {
	columns := []column{
		col("Status"), col("Video"), {title: "Title", maxWidth: maxTitleWidth}, col("File"),
		numCol("Size"), numCol("Tries"), numCol("Elapsed"), {title: "Detail", maxWidth: maxDetailWidth},
	}

	rows := make([][]string, 0, len(results))
	var succeeded, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case fetch.StatusSuccess:
			succeeded++
		case fetch.StatusSkipped:
			skipped++
		default:
			failed++
		}
		rows = append(rows, []string{
			statusLabel(r.Status, colorize),
			r.VideoID,
			displayTitle(r),
			lo.Ternary(r.AudioFilePath != "", filepath.Base(r.AudioFilePath), "-"),
			fileSize(r.AudioFilePath),
			lo.Ternary(r.Attempts > 0, strconv.Itoa(r.Attempts), "-"),
			r.Elapsed().Round(100 * time.Millisecond).String(),
			resultDetail(r),
		})
	}

	summary := fmt.Sprintf("%d succeeded, %d skipped, %d failed", succeeded, skipped, failed)
	return renderTable(columns, rows) + "\n" + summary
}

func displayTitle(r fetch.Result) string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return r.VideoID
}

func resultDetail(r fetch.Result) string {
	switch {
	case r.Status == fetch.StatusError && r.ErrorKind != "":
		return fmt.Sprintf("%s: %s", r.ErrorKind, r.ErrorMessage)
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case len(r.SubtitleFiles) > 0:
		return fmt.Sprintf("%d subtitle file(s)", len(r.SubtitleFiles))
	default:
		return ""
	}
}

func fileSize(path string) string {
	if path == "" {
		return "-"
	}
	info, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return humanize.Bytes(uint64(info.Size()))
}
