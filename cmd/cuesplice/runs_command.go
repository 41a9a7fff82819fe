package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cuesplice/internal/registry"
	"cuesplice/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var markInterrupted bool

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show recent pipeline runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if markInterrupted {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				lock := flock.New(cfg.LockPath())
				ok, err := lock.TryLock()
				if err != nil {
					return services.Wrap(services.ErrIO, "runs", "lock", cfg.LockPath(), err)
				}
				if !ok {
					return services.Wrap(services.ErrTransient, "runs", "lock", "a splice is in progress", nil)
				}
				n, err := store.MarkInterrupted(cmd.Context())
				_ = lock.Unlock()
				if err != nil {
					return err
				}
				if !ctx.JSONMode() {
					fmt.Fprintf(out, "Marked %d runs interrupted\n", n)
				}
			}

			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "runs", "get", args[0], nil)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, run)
				}
				printRunDetail(cmd, *run)
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if runs == nil {
					runs = []registry.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				result := fmt.Sprintf("%d outputs", len(run.Outputs))
				if run.ErrorMessage != "" {
					result = truncate(run.ErrorMessage, 48)
				}
				rows = append(rows, []string{
					shortID(run.ID),
					run.Project,
					string(run.Status),
					formatTime(run.StartedAt),
					run.Elapsed().Round(time.Second).String(),
					result,
				})
			}
			fmt.Fprintln(out, renderTable(out, []string{"ID", "Project", "Status", "Started", "Elapsed", "Result"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&markInterrupted, "mark-interrupted", false, "Flag runs left running by a crashed process")
	return cmd
}

func printRunDetail(cmd *cobra.Command, run registry.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	kind := statusInfo
	switch run.Status {
	case registry.RunSucceeded:
		kind = statusOK
	case registry.RunFailed:
		kind = statusError
	case registry.RunInterrupted:
		kind = statusWarn
	}
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Status", kind, string(run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Project", statusInfo, run.Project, colorize))
	if run.VideoPath != "" {
		fmt.Fprintln(out, renderStatusLine("Video", statusInfo, run.VideoPath, colorize))
	}
	if run.SubtitlePath != "" {
		fmt.Fprintln(out, renderStatusLine("Subtitles", statusInfo, run.SubtitlePath, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatTime(run.StartedAt), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, run.Elapsed().Round(time.Second).String(), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorClass+": "+run.ErrorMessage, colorize))
	}
	if len(run.Outputs) > 0 {
		fmt.Fprintln(out, renderStatusLine("Outputs", statusOK, strings.Join(run.Outputs, ", "), colorize))
	}
}
