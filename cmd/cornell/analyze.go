package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze text for spelling, sentiment, classification and intent",
	Long: `Run the text analyzer over the whole input.

Spelling uses the configured spell checker (the built-in English word
list by default).
Sentiment and classification report N/A unless a provider is configured
under capabilities.

Examples:
  cornell analyze essay.txt
  echo "Why is the sky blue?" | cornell analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		text, err := readInput(cmd, inputArg(args))
		if err != nil {
			return err
		}
		analyzer, err := s.Analyzer()
		if err != nil {
			return err
		}
		result, err := analyzer.Analyze(cmd.Context(), text)
		if err != nil {
			return err
		}
		return output.To(cmd.OutOrStdout(), format(), result)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
