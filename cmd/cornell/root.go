package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/output"
	"github.com/jackzampolin/cornell/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "cornell",
	Short: "Turn plain text into Cornell Notes and extract structured records",
	Long: `Cornell converts unstructured text into Cornell Notes pages with
document-level analysis, and pulls structured records out of prescription
and receipt texts.

The pipeline includes:
  - Section splitting on underlined headings and blank lines
  - Main idea, supporting details and cues per section
  - Spelling, sentiment, classification and intent analysis
  - Prescription and receipt field extraction`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.cornell/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "cornell home directory (default: ~/.cornell)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", string(output.Default), "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Validate output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_, err := output.Parse(outputFormat)
		return err
	}

	rootCmd.AddCommand(versionCmd)
}

// format returns the validated --output format.
func format() output.Format {
	f, err := output.Parse(outputFormat)
	if err != nil {
		return output.Default
	}
	return f
}
