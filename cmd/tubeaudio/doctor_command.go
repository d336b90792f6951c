package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tubeaudio/internal/config"
	"tubeaudio/internal/deps"
	"tubeaudio/internal/history"
	"tubeaudio/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			depStatuses := preflight.CheckSystemDeps(cfg)

			var engine preflight.Versioner
			if eng, err := ctx.newEngine(cfg); err == nil {
				engine = eng
			}
			checks := preflight.RunAll(cmd.Context(), cfg, engine)

			var historyCheck *preflight.Result
			if cfg.History.Enabled {
				result := checkHistory(cmd, cfg)
				historyCheck = &result
			}

			failed := len(deps.Missing(depStatuses)) > 0 || preflight.Failed(checks) ||
				(historyCheck != nil && !historyCheck.Passed)

			if ctx.jsonOutput() {
				report := map[string]any{
					"dependencies": depStatuses,
					"checks":       checks,
					"ok":           !failed,
				}
				if historyCheck != nil {
					report["history"] = historyCheck
				}
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Dependencies", colorize)
				for _, s := range depStatuses {
					lines = append(lines, renderDependency(s, colorize))
				}
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Checks", colorize)...)
				for _, r := range checks {
					lines = append(lines, renderCheck(r, colorize))
				}
				if historyCheck != nil {
					lines = append(lines, renderCheck(*historyCheck, colorize))
				}
				fmt.Fprintln(out, strings.Join(lines, "\n"))
			}

			if failed {
				return errRunFailed
			}
			return nil
		},
	}
}

func checkHistory(cmd *cobra.Command, cfg *config.Config) preflight.Result {
	const name = "History database"
	store, err := history.Open(cfg)
	if err != nil {
		return preflight.Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	health, err := store.CheckHealth(cmd.Context())
	if err != nil {
		return preflight.Result{Name: name, Detail: err.Error()}
	}
	if !health.IntegrityCheck {
		return preflight.Result{Name: name, Detail: fmt.Sprintf("%s (integrity check failed)", health.DBPath)}
	}
	return preflight.Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d runs, schema v%d)", health.DBPath, health.TotalRuns, health.SchemaVersion)}
}

func renderDependency(s deps.Status, colorize bool) string {
	switch {
	case s.Available:
		return renderStatusLine(s.Name, statusOK, s.Path, colorize)
	case s.Optional:
		return renderStatusLine(s.Name, statusWarn, s.Detail, colorize)
	default:
		return renderStatusLine(s.Name, statusError, s.Detail, colorize)
	}
}

func renderCheck(r preflight.Result, colorize bool) string {
	if r.Passed {
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	}
	return renderStatusLine(r.Name, statusError, r.Detail, colorize)
}
