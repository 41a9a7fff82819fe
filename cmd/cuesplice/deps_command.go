package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuesplice/internal/deps"
	"cuesplice/internal/preflight"
	"cuesplice/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)

			var failed []string
			for _, s := range deps.Missing(statuses) {
				failed = append(failed, s.Name)
			}
			if res, bad := preflight.FirstFailure(checks); bad {
				failed = append(failed, res.Name)
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, map[string]any{"dependencies": statuses, "directories": checks}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, s := range statuses {
					kind, msg := statusOK, s.Command
					if !s.Available {
						kind, msg = statusError, s.Detail
						if s.Optional {
							kind = statusWarn
						}
					}
					fmt.Fprintln(out, renderStatusLine(s.Name, kind, msg, colorize))
				}
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Directories", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, c := range checks {
					kind := statusOK
					if !c.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(c.Name, kind, c.Detail, colorize))
				}
			}

			if len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "deps", "check", fmt.Sprintf("%d checks failed: %v", len(failed), failed), nil)
			}
			return nil
		},
	}
}
