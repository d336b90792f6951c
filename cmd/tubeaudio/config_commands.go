package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"tubeaudio/internal/config"
)

func newConfigCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, check or print the configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(cc),
		newConfigShowCommand(cc),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		pathFlag  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write the annotated sample configuration",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				pathFlag = args[0]
			}
			target, err := initTarget(pathFlag)
			if err != nil {
				return err
			}
			err = config.WriteSample(target, overwrite)
			if errors.Is(err, config.ErrSampleExists) {
				return fmt.Errorf("%w (use --overwrite to replace it)", err)
			} else if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Wrote sample configuration to %s\nEdit paths.output_dir and audio.format, then run `tubeaudio doctor`.\n",
				target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget expands path, or returns the default config location when blank.
func initTarget(path string) (string, error) {
	resolve, what := config.ExpandPath, "resolve config path"
	if strings.TrimSpace(path) == "" {
		resolve = func(string) (string, error) { return config.DefaultConfigPath() }
		what = "determine default config path"
	}
	target, err := resolve(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return target, nil
}

func newConfigValidateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := cc.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			source := statusOK
			note := cc.configPath
			if !cc.configExists {
				source, note = statusWarn, cc.configPath+" (not found, using defaults)"
			}
			fmt.Fprintln(out, renderStatusLine("Config file", source, note, colorize))
			fmt.Fprintln(out, renderStatusLine("Validation", statusOK, "Configuration valid", colorize))
			return nil
		},
	}
}

func newConfigShowCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, cfg)
			}
			body, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cc.configPath, body)
			return err
		},
	}
}
