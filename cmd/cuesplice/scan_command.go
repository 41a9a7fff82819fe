package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cuesplice/internal/changepoint"
	"cuesplice/internal/pipeline"
)

type scanPoint struct {
	Frame      int     `json:"frame"`
	Timestamp  float64 `json:"timestamp"`
	Confidence float64 `json:"confidence"`
	Accepted   bool    `json:"accepted"`
}

type scanReport struct {
	Video      string      `json:"video"`
	Samples    int         `json:"samples"`
	Candidates int         `json:"candidates"`
	Points     []scanPoint `json:"points"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "scan <video>",
		Short: "List caption change points detected in a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			det, err := p.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report := buildScanReport(args[0], det, all)
			if ctx.JSONMode() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			if len(report.Points) == 0 {
				fmt.Fprintf(out, "No caption changes found in %d frames\n", det.Samples)
				return nil
			}
			headers := []string{"Frame", "Time", "Confidence"}
			if all {
				headers = append(headers, "Accepted")
			}
			rows := make([][]string, 0, len(report.Points))
			for _, pt := range report.Points {
				row := []string{
					strconv.Itoa(pt.Frame),
					formatSeconds(pt.Timestamp),
					fmt.Sprintf("%.2f%%", pt.Confidence),
				}
				if all {
					row = append(row, yesNo(pt.Accepted))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, []columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d change points in %d frames\n", len(det.Candidates), det.Samples)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every sample over the threshold, including glitches")
	return cmd
}

func buildScanReport(video string, det pipeline.Detection, all bool) scanReport {
	report := scanReport{Video: video, Samples: det.Samples, Candidates: len(det.Candidates), Points: []scanPoint{}}
	accepted := make(map[int]struct{}, len(det.Candidates))
	for _, c := range det.Candidates {
		accepted[c.FrameIndex] = struct{}{}
	}
	if !all {
		for _, c := range det.Candidates {
			report.Points = append(report.Points, pointFromCandidate(c))
		}
		return report
	}
	for _, s := range det.Spikes {
		_, ok := accepted[s.FrameIndex]
		report.Points = append(report.Points, scanPoint{
			Frame:      s.FrameIndex,
			Timestamp:  s.Timestamp,
			Confidence: s.Confidence,
			Accepted:   ok,
		})
	}
	return report
}

func pointFromCandidate(c changepoint.Candidate) scanPoint {
	return scanPoint{Frame: c.FrameIndex, Timestamp: c.Timestamp, Confidence: c.Confidence, Accepted: true}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
