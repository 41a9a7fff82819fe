package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cuesplice/internal/logging"
	"cuesplice/internal/logs"
	"cuesplice/internal/services"
)

const logFollowInterval = 500 * time.Millisecond

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the cuesplice log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.LogDir == "" {
				return services.Wrap(services.ErrConfiguration, "logs", "locate", "paths.log_dir is empty; file logging is off", nil)
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			tail, offset, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logFollowInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	return cmd
}
