package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "lookup <subtitles.srt> [time]",
		Short: "Find the subtitle shown at a time, or search cues with --text",
		Long: `Find the subtitle shown at a time given in seconds or as HH:MM:SS,mmm.

With --text, rank cues by how well their words match the query instead.`,
		Args:        cobra.RangeArgs(1, 2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := subtitles.Load(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(query) != "" {
				return printSearch(cmd, ctx, entries, query, limit)
			}
			if len(args) < 2 {
				return services.Wrap(services.ErrValidation, "lookup", "parse args", "give a time or --text", nil)
			}
			secs, err := parseSeconds(args[1])
			if err != nil {
				return services.Wrap(services.ErrValidation, "lookup", "parse time", args[1], err)
			}
			idx := subtitles.IndexAt(entries, secs)

			if ctx.JSONMode() {
				payload := map[string]any{"time": secs, "index": idx}
				if idx >= 0 {
					e := entries[idx]
					payload["start"] = e.Start.Seconds()
					payload["end"] = e.End.Seconds()
					payload["text"] = e.Text
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if idx < 0 {
				fmt.Fprintf(out, "No subtitle at %s\n", formatSeconds(secs))
				return nil
			}
			e := entries[idx]
			fmt.Fprintf(out, "%d\t%s --> %s\t%s\n", idx, e.Start, e.End, truncate(e.Text, 80))
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "text", "", "Search cue text instead of looking up a time")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum matches for --text")
	return cmd
}

func printSearch(cmd *cobra.Command, ctx *commandContext, entries []subtitles.Entry, query string, limit int) error {
	matches := subtitles.Search(entries, query, limit)

	if ctx.JSONMode() {
		type hit struct {
			Index int     `json:"index"`
			Score float64 `json:"score"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		}
		hits := make([]hit, 0, len(matches))
		for _, m := range matches {
			e := entries[m.Index]
			hits = append(hits, hit{Index: m.Index, Score: m.Score, Start: e.Start.Seconds(), End: e.End.Seconds(), Text: e.Text})
		}
		return writeJSON(cmd, hits)
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "No cues match %q\n", query)
		return nil
	}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		e := entries[m.Index]
		rows = append(rows, []string{
			strconv.Itoa(m.Index),
			e.Start.String(),
			fmt.Sprintf("%.2f", m.Score),
			truncate(e.Text, 60),
		})
	}
	fmt.Fprintln(out, renderTable(out, []string{"#", "Start", "Score", "Text"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
	return nil
}
