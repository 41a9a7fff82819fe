package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"cuesplice/internal/pipeline"
)

func newRefineCommand(ctx *commandContext) *cobra.Command {
	var replace []int
	var project, output string
	var showCues bool

	cmd := &cobra.Command{
		Use:   "refine <video> <subtitles.srt>",
		Short: "Snap subtitle boundaries to caption changes in the video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			indices := slices.Clone(replace)
			fromProject, err := projectIndices(cmd.Context(), ctx, project)
			if err != nil {
				return err
			}
			indices = append(indices, fromProject...)
			slices.Sort(indices)
			indices = slices.Compact(indices)

			result, err := p.Refine(cmd.Context(), pipeline.RefineRequest{
				VideoPath:    args[0],
				SubtitlePath: args[1],
				Replacements: indices,
				OutputPath:   output,
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"output":        result.OutputPath,
					"cues":          len(result.Entries),
					"candidates":    len(result.Candidates),
					"matched":       nonNil(result.Report.Matched),
					"unmatched":     nonNil(result.Report.Unmatched),
					"overlap_fixes": nonNil(result.Report.OverlapFixes),
					"discarded":     result.Report.Discarded,
					"nudged":        nonNil(result.Report.Nudged),
				})
			}

			out := cmd.OutOrStdout()
			if showCues {
				matched := make(map[int]bool, len(result.Report.Matched))
				for _, idx := range result.Report.Matched {
					matched[idx] = true
				}
				rows := make([][]string, 0, len(result.Entries))
				for i, e := range result.Entries {
					rows = append(rows, []string{
						strconv.Itoa(i),
						e.Start.String(),
						e.End.String(),
						yesNo(matched[i]),
						truncate(e.Text, 48),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"#", "Start", "End", "Snapped", "Text"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
			}
			fmt.Fprintf(out, "Refined %d cues with %d change points (%d snapped, %d kept)\n",
				len(result.Entries), len(result.Candidates), len(result.Report.Matched), len(result.Report.Unmatched))
			if len(result.Report.Nudged) > 0 {
				fmt.Fprintf(out, "Nudged starts: %v\n", result.Report.Nudged)
			}
			fmt.Fprintf(out, "Wrote %s\n", result.OutputPath)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&replace, "replace", nil, "Subtitle indices (0-based) that will be replaced by scenes")
	cmd.Flags().StringVar(&project, "project", "", "Also nudge indices stored for this registry project")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output SRT (default: <input>_refined.srt)")
	cmd.Flags().BoolVar(&showCues, "cues", false, "Print the refined cue table")
	return cmd
}

func nonNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
