package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tubeaudio/internal/config"
	"tubeaudio/internal/deps"
	"tubeaudio/internal/fetch"
	"tubeaudio/internal/history"
	"tubeaudio/internal/logging"
	"tubeaudio/internal/notifications"
	"tubeaudio/internal/preflight"
	"tubeaudio/internal/runlock"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	var format string
	var output string
	var jobs int

	cmd := &cobra.Command{
		Use:   "fetch <url>...",
		Short: "Download audio for one or more URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if cmd.Flags().Changed("overwrite") {
				cfg.Audio.OverwriteExisting = overwrite
			}
			if strings.TrimSpace(format) != "" {
				cfg.Audio.Format = strings.ToLower(strings.TrimSpace(format))
			}
			if strings.TrimSpace(output) != "" {
				expanded, err := config.ExpandPath(strings.TrimSpace(output))
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Paths.OutputDir = expanded
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid fetch options: %w", err)
			}
			if jobs <= 0 {
				jobs = cfg.Workers.Parallel
			}

			if missing := deps.Missing(preflight.CheckSystemDeps(&cfg)); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s (run `tubeaudio doctor`)", strings.Join(missing, ", "))
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			gateway, _, err := ctx.gateway(&cfg, logger)
			if err != nil {
				return err
			}

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(&cfg)
				if err != nil {
					logging.WarnWithContext(logger, "history database unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
					)
					store = nil
				} else {
					defer store.Close()
				}
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			b := &batch{
				fetcher:   fetch.New(&cfg, gateway, logger),
				locker:    runlock.New(cfg.LockDir()),
				store:     store,
				resultLog: history.NewResultLog(cfg.History),
				notifier:  notifications.NewService(&cfg),
				logger:    logging.NewComponentLogger(logger, "cli"),
				jobs:      jobs,
				now:       time.Now,
			}
			results := b.run(runCtx, args)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderResults(results, shouldColorize(cmd.OutOrStdout())))
			}

			if err := runCtx.Err(); err != nil {
				return err
			}
			for _, r := range results {
				if r.Failed() {
					return errRunFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing audio files")
	cmd.Flags().StringVar(&format, "format", "", "Audio format override (mp3, m4a, opus, flac, ...)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory override")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Concurrent downloads (default workers.parallel)")
	return cmd
}
