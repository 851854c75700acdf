package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avishaychauhan/EchoLabs/internal/agent/summary"
	"github.com/avishaychauhan/EchoLabs/internal/model"
)

func newSweepCommand(p *probe) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "sweep [transcript...]",
		Short: "Extract summary bullets from a whole transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := inputText(cmd, args, file)
			if err != nil {
				return err
			}
			extractor := summary.NewExtractor(p.client, summary.NewStore())
			return writeJSON(cmd, newAnalysis(extractor.Sweep(cmd.Context(), "probe", transcript)))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the transcript from a file (- for stdin)")

	return cmd
}

type overlapReport struct {
	Existing  string  `json:"existing"`
	Overlap   float64 `json:"overlap"`
	Duplicate bool    `json:"duplicate"`
}

type dedupReport struct {
	Incoming  string          `json:"incoming"`
	Accepted  bool            `json:"accepted"`
	Threshold float64         `json:"threshold"`
	Overlaps  []overlapReport `json:"overlaps"`
}

func newDedupCommand() *cobra.Command {
	var existing []string

	cmd := &cobra.Command{
		Use:   "dedup <bullet...>",
		Short: "Check a bullet against existing bullets with the word-overlap rule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			incoming, err := inputText(cmd, args, "")
			if err != nil {
				return err
			}

			current := make([]model.SummaryBullet, 0, len(existing))
			report := dedupReport{
				Incoming:  incoming,
				Threshold: summary.SimilarityThreshold,
				Overlaps:  make([]overlapReport, 0, len(existing)),
			}
			for _, text := range existing {
				current = append(current, model.SummaryBullet{Text: text, Category: model.CategoryKeyPoint})
				overlap := summary.Overlap(incoming, text)
				report.Overlaps = append(report.Overlaps, overlapReport{
					Existing:  text,
					Overlap:   overlap,
					Duplicate: overlap >= summary.SimilarityThreshold,
				})
			}

			accepted := summary.Dedup([]model.SummaryBullet{{Text: incoming, Category: model.CategoryKeyPoint}}, current)
			report.Accepted = len(accepted) == 1
			return writeJSON(cmd, report)
		},
	}

	cmd.Flags().StringArrayVarP(&existing, "existing", "e", nil, "An existing bullet (repeatable)")

	return cmd
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
