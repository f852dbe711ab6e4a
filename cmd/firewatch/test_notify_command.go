package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"firewatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ChatIDs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Telegram not configured; notification skipped")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
