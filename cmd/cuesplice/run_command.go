package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuesplice/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var subtitlePath, audioPath, transcriptPath string
	var pairs []string
	var clipsDir, project, outputDir string

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Align, refine and splice in one pass",
		Long: `Run the whole pipeline for one video.

Without --subtitles the transcript is aligned to --audio first. The refined
SRT nudges every replaced subtitle before the variations are rendered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			vars, err := resolveVariations(cmd.Context(), ctx, variationSource{pairs: pairs, project: project, clipsDir: clipsDir})
			if err != nil {
				return err
			}
			result, err := p.Run(cmd.Context(), pipeline.RunRequest{
				VideoPath:      args[0],
				SubtitlePath:   subtitlePath,
				AudioPath:      audioPath,
				TranscriptPath: transcriptPath,
				Variations:     vars,
				OutputDir:      outputDir,
				Project:        project,
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				payload := map[string]any{
					"refined":  result.Refine.OutputPath,
					"outputs":  result.Splice.Outputs,
					"nudged":   nonNil(result.Refine.Report.Nudged),
					"matched":  len(result.Refine.Report.Matched),
					"aligned":  result.Alignment != nil,
					"variants": len(result.Splice.Outputs),
				}
				if result.Alignment != nil {
					payload["aligned_subtitles"] = result.Alignment.SubtitlePath
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if result.Alignment != nil {
				fmt.Fprintf(out, "Aligned %d cues -> %s\n", len(result.Alignment.Entries), result.Alignment.SubtitlePath)
			}
			fmt.Fprintf(out, "Refined %d cues -> %s\n", len(result.Refine.Entries), result.Refine.OutputPath)
			return printSpliceResult(cmd, ctx, result.Splice)
		},
	}

	cmd.Flags().StringVar(&subtitlePath, "subtitles", "", "Existing SRT; skips alignment")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio to align the transcript against")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Plain-text transcript")
	cmd.Flags().StringArrayVar(&pairs, "replace", nil, "Scene for a subtitle as idx=path (0-based, repeatable)")
	cmd.Flags().StringVar(&clipsDir, "clips-dir", "", "Directory of numbered scene folders (default: paths.clips_dir)")
	cmd.Flags().StringVar(&project, "project", "", "Use the replacements stored for this registry project")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for outputs (default: paths.output_dir)")
	cmd.MarkFlagsRequiredTogether("audio", "transcript")
	return cmd
}
