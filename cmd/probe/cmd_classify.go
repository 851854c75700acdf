package main

import (
	"github.com/spf13/cobra"

	"github.com/avishaychauhan/EchoLabs/internal/model"
	"github.com/avishaychauhan/EchoLabs/internal/orchestrator"
)

func newClassifyCommand(p *probe) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify transcript text into scored intents",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args, file)
			if err != nil {
				return err
			}

			res := orchestrator.NewClassifier(p.client).Classify(cmd.Context(), text)
			out := struct {
				model.Classification
				Degraded bool   `json:"degraded,omitempty"`
				Reason   string `json:"reason,omitempty"`
			}{Classification: res.Value, Degraded: res.Degraded}
			out.Intents = orchestrator.Score(res.Value.Intents)
			if res.Reason != nil {
				out.Reason = res.Reason.Error()
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file (- for stdin)")

	return cmd
}
