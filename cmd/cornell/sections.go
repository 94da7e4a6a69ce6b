package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/output"
	"github.com/jackzampolin/cornell/internal/sections"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [file]",
	Short: "Split text into heading and paragraph sections",
	Long: `Split text into typed sections without calling any capability.

Useful to check how a document will be paged before generating notes.

Examples:
  cornell sections lecture.txt
  cornell sections lecture.txt -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, inputArg(args))
		if err != nil {
			return err
		}
		secs := sections.Split(text)
		if secs == nil {
			secs = []sections.Section{}
		}
		return output.To(cmd.OutOrStdout(), format(), secs)
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}
