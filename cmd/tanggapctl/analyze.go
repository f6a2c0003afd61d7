package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linnemanlabs/tanggap/internal/complaint"
	"github.com/linnemanlabs/tanggap/internal/complaint/memstore"
	"github.com/linnemanlabs/tanggap/internal/sentiment/nbayes"
)

func analyzeCmd() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Preview sentiment and priority for a piece of text",
		Long: `Run the local sentiment model and priority rules over text without
storing anything or contacting a server.

Examples:
  tanggapctl analyze "ada kebakaran di pasar, tolong segera"
  tanggapctl analyze -m models/sentiment.yaml -o json "terima kasih, pelayanan cepat"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(); err != nil {
				return err
			}
			model, err := nbayes.Load(modelPath)
			if err != nil {
				return fmt.Errorf("failed to load model: %w", err)
			}
			svc := complaint.NewService(memstore.New(), model, nil, nil, nil)
			a := svc.Analyze(cmd.Context(), strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return printJSON(out, a)
			}
			return printRows(out, [][2]string{
				{"Sentiment", a.Sentiment},
				{"Confidence", fmt.Sprintf("%.1f%%", a.Confidence)},
				{"Priority", fmt.Sprintf("%s (%s)", a.Priority.Label(), a.Priority)},
			})
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "models/sentiment.yaml", "Path to the naive Bayes model file")
	return cmd
}
