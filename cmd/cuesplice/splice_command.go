package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuesplice/internal/pipeline"
	"cuesplice/internal/services"
)

func newSpliceCommand(ctx *commandContext) *cobra.Command {
	var pairs []string
	var clipsDir, project, outputDir string

	cmd := &cobra.Command{
		Use:   "splice <video> <refined.srt>",
		Short: "Render variations with scenes swapped in at subtitle boundaries",
		Long: `Render one output video per variation.

Scenes come from --replace idx=path pairs (one variation), from the registry
when --project is set, or from a clips directory whose numbered folders
(1-based subtitle numbers) hold one .mp4 per variation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			vars, err := resolveVariations(cmd.Context(), ctx, variationSource{pairs: pairs, project: project, clipsDir: clipsDir})
			if err != nil {
				return err
			}
			if len(vars) == 0 {
				return services.Wrap(services.ErrValidation, "cli", "splice", "no scenes given: use --replace, --project or --clips-dir", nil)
			}
			result, err := p.Splice(cmd.Context(), pipeline.SpliceRequest{
				VideoPath:    args[0],
				SubtitlePath: args[1],
				Variations:   vars,
				OutputDir:    outputDir,
				Project:      project,
			})
			if err != nil {
				return err
			}
			return printSpliceResult(cmd, ctx, result)
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "replace", nil, "Scene for a subtitle as idx=path (0-based, repeatable)")
	cmd.Flags().StringVar(&clipsDir, "clips-dir", "", "Directory of numbered scene folders (default: paths.clips_dir)")
	cmd.Flags().StringVar(&project, "project", "", "Use the replacements stored for this registry project")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for rendered videos (default: paths.output_dir)")
	return cmd
}

func printSpliceResult(cmd *cobra.Command, ctx *commandContext, result pipeline.SpliceResult) error {
	if ctx.JSONMode() {
		type variation struct {
			Output   string  `json:"output"`
			Replaced []int   `json:"replaced"`
			Skipped  []int   `json:"skipped"`
			Duration float64 `json:"duration"`
		}
		items := make([]variation, 0, len(result.Outputs))
		for i, out := range result.Outputs {
			v := variation{Output: out, Replaced: []int{}, Skipped: []int{}}
			if i < len(result.Timelines) {
				tl := result.Timelines[i]
				v.Replaced = nonNil(tl.Replaced())
				v.Skipped = nonNil(tl.Skipped)
				v.Duration = tl.Duration
			}
			items = append(items, v)
		}
		return writeJSON(cmd, map[string]any{"variations": items})
	}

	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(result.Outputs))
	for i, path := range result.Outputs {
		replaced, skipped, duration := "-", "-", "-"
		if i < len(result.Timelines) {
			tl := result.Timelines[i]
			if r := tl.Replaced(); len(r) > 0 {
				replaced = fmt.Sprint(r)
			}
			if len(tl.Skipped) > 0 {
				skipped = fmt.Sprint(tl.Skipped)
			}
			duration = formatSeconds(tl.Duration)
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), path, replaced, skipped, duration})
	}
	fmt.Fprintln(out, renderTable(out, []string{"#", "Output", "Replaced", "Skipped", "Length"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
	return nil
}
