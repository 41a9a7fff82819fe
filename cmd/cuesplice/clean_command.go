package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cuesplice/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover segment directories from interrupted splices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := outputDir
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			out := cmd.OutOrStdout()

			if dryRun {
				dirs, err := staging.ListDirectories(dir)
				if err != nil {
					return fmt.Errorf("list work directories: %w", err)
				}
				cutoff := time.Now().Add(-olderThan)
				stale := make([]staging.DirInfo, 0, len(dirs))
				for _, d := range dirs {
					if olderThan <= 0 || d.ModTime.Before(cutoff) {
						stale = append(stale, d)
					}
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"dir": dir, "would_remove": stale})
				}
				if len(stale) == 0 {
					fmt.Fprintln(out, "Nothing to clean")
					return nil
				}
				rows := make([][]string, 0, len(stale))
				for _, d := range stale {
					rows = append(rows, []string{d.Name, humanize.Bytes(uint64(max(d.Size, 0))), humanize.Time(d.ModTime)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Directory", "Size", "Modified"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			}

			result := staging.CleanStale(cmd.Context(), dir, olderThan, ctx.loggerFor())
			if ctx.JSONMode() {
				errs := make([]map[string]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, map[string]string{"path": e.Path, "error": e.Error.Error()})
				}
				removed := result.Removed
				if removed == nil {
					removed = []string{}
				}
				return writeJSON(cmd, map[string]any{"dir": dir, "removed": removed, "errors": errs})
			}
			fmt.Fprintf(out, "Removed %d work directories from %s\n", len(result.Removed), dir)
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d directories could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only remove directories older than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be removed")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to clean (default: paths.output_dir)")
	return cmd
}
