package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tubeaudio/internal/notifications"
)

var errNoTopic = errors.New("notifications.ntfy_topic is not configured (set it in config.toml or TUBEAUDIO_NTFY_TOPIC)")

func newTestNotifyCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return errNoTopic
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}
