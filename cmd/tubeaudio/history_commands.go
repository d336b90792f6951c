package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tubeaudio/internal/fetch"
	"tubeaudio/internal/history"
	"tubeaudio/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var status string
	var videoID string
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFilter(status)
			if err != nil {
				return err
			}
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), history.ListOptions{
					Status:  filter,
					VideoID: strings.TrimSpace(videoID),
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []*history.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistory(entries, shouldColorize(out), time.Now()))
				return nil
			})
		},
	}
	historyCmd.Flags().StringVar(&status, "status", "", "Filter by status (success, error, skipped)")
	historyCmd.Flags().StringVar(&videoID, "video", "", "Filter by video ID")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum runs to show")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <video-id>",
		Short: "Show the latest run for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				entry, err := store.Latest(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no runs recorded for %s", args[0])
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				rows := [][]string{
					{"Status", statusLabel(entry.Status, shouldColorize(cmd.OutOrStdout()))},
					{"Video", entry.VideoURL},
					{"Title", textutil.OrDash(entry.Title)},
					{"File", textutil.OrDash(entry.AudioPath)},
					{"Subtitles", strconv.Itoa(len(entry.SubtitleFiles))},
					{"Attempts", strconv.Itoa(entry.Attempts)},
					{"Elapsed", entry.Elapsed().Round(100 * time.Millisecond).String()},
					{"Finished", entry.FinishedAt.Local().Format(time.DateTime)},
					{"Correlation ID", textutil.OrDash(entry.CorrelationID)},
				}
				if entry.ErrorMessage != "" {
					rows = append(rows, []string{"Error", fmt.Sprintf("%s: %s", entry.ErrorKind, entry.ErrorMessage)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{col("Field"), col("Value")}, rows))
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count recorded runs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{
						"total":   stats.Total,
						"success": stats.Success,
						"error":   stats.Error,
						"skipped": stats.Skipped,
					})
				}
				rows := [][]string{
					{"Success", strconv.Itoa(stats.Success)},
					{"Skipped", strconv.Itoa(stats.Skipped)},
					{"Error", strconv.Itoa(stats.Error)},
					{"Total", strconv.Itoa(stats.Total)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{col("Status"), numCol("Runs")}, rows))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return err
			}
			cutoff := time.Now().Add(-age)
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"removed": removed, "cutoff": cutoff.UTC()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) finished before %s\n", removed, humanize.Time(cutoff))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Age threshold, e.g. 30d, 12h, 90m")
	return cmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("run history is disabled (history.enabled = false)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func parseStatusFilter(value string) (fetch.Status, error) {
	status := fetch.Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case "", fetch.StatusSuccess, fetch.StatusError, fetch.StatusSkipped:
		return status, nil
	default:
		return "", fmt.Errorf("invalid status %q (want success, error, or skipped)", value)
	}
}

// parseAge accepts Go durations plus a whole-day "Nd" form.
func parseAge(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	age, err := time.ParseDuration(value)
	if err != nil || age < 0 {
		return 0, fmt.Errorf("invalid age %q", value)
	}
	return age, nil
}

func renderHistory(entries []*history.Entry, colorize bool, now time.Time) string {
	columns := []column{
		numCol("ID"), col("Status"), col("Video"), {title: "Title", maxWidth: maxTitleWidth},
		numCol("Tries"), numCol("Elapsed"), col("Finished"), {title: "Detail", maxWidth: maxDetailWidth},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.ErrorMessage
		if e.Status == fetch.StatusError && e.ErrorKind != "" {
			detail = string(e.ErrorKind)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			statusLabel(e.Status, colorize),
			e.VideoID,
			textutil.OrDash(e.Title),
			strconv.Itoa(e.Attempts),
			e.Elapsed().Round(100 * time.Millisecond).String(),
			humanize.RelTime(e.FinishedAt, now, "ago", "from now"),
			detail,
		})
	}
	return renderTable(columns, rows)
}
