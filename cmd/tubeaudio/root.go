package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func newRootCommand() *cobra.Command {
	return newRootCommandWith(newYtdlpEngine)
}

// newRootCommandWith wires the command tree around factory so tests can
// substitute a fake extraction engine.
func newRootCommandWith(factory engineFactory) *cobra.Command {
	var (
		configPath string
		logLevel   string
		asJSON     bool
	)
	cc := newCommandContext(&configPath, &logLevel, &asJSON, factory)

	root := &cobra.Command{
		Use:           "tubeaudio",
		Short:         "Download audio tracks from YouTube",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cc.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file path")
	flags.StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	flags.BoolVar(&asJSON, "json", false, "Print machine-readable JSON")

	root.AddCommand(
		newFetchCommand(cc),
		newInfoCommand(cc),
		newValidateCommand(),
		newHistoryCommand(cc),
		newConfigCommand(cc),
		newDoctorCommand(cc),
		newTestNotifyCommand(cc),
	)
	return root
}
