package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cuesplice/internal/alignment"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var audioPath, transcriptPath, outputDir string

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Force-align a transcript to its audio and write an SRT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			svc := alignment.NewService(alignment.ConfigFrom(cfg), ctx.loggerFor())
			result, err := svc.Align(cmd.Context(), alignment.Request{
				AudioPath:      audioPath,
				TranscriptPath: transcriptPath,
				OutputDir:      outputDir,
			})
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"sync_map":  result.SyncMapPath,
					"subtitles": result.SubtitlePath,
					"cues":      len(result.Entries),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Aligned %d cues -> %s\n", len(result.Entries), result.SubtitlePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio file to align against")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Plain-text transcript, one cue per line")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the sync map and SRT (default: paths.output_dir)")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}
