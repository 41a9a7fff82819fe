package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuesplice/internal/notifications"
	"cuesplice/internal/services"
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
			out := cmd.OutOrStdout()
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, "Notifications disabled: set notifications.ntfy_topic")
				return nil
			}
			svc := notifications.NewService(cfg)
			if err := svc.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return services.Wrap(services.ErrExternalTool, "notify", "publish", cfg.Notifications.NtfyTopic, err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
