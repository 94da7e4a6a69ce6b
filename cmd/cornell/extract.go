package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/extract"
	"github.com/jackzampolin/cornell/internal/output"
)

var extractToday string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured records from text",
	Long: `Extract structured records from prescription and receipt texts.

Fields that are not found are reported as N/A.

Examples:
  cornell extract prescription rx.txt
  cornell extract receipt order.txt -o json`,
}

var extractPrescriptionCmd = &cobra.Command{
	Use:   "prescription [file]",
	Short: "Extract patient name, date and medicines",
	Long: `Extract a prescription record.

When the text has no date, today's date is used. Pass --today to pin it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, inputArg(args))
		if err != nil {
			return err
		}
		clock, err := clockFromFlag(extractToday)
		if err != nil {
			return err
		}
		return output.To(cmd.OutOrStdout(), format(), extract.Prescription(text, clock))
	},
}

var extractReceiptCmd = &cobra.Command{
	Use:   "receipt [file]",
	Short: "Extract order ID, customer, items and total",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, inputArg(args))
		if err != nil {
			return err
		}
		return output.To(cmd.OutOrStdout(), format(), extract.Receipt(text))
	},
}

func clockFromFlag(today string) (extract.Clock, error) {
	if today == "" {
		return extract.SystemClock{}, nil
	}
	t, err := time.Parse(extract.DateLayout, today)
	if err != nil {
		return nil, fmt.Errorf("invalid --today %q (want YYYY-MM-DD): %w", today, err)
	}
	return extract.FixedClock(t), nil
}

func init() {
	extractPrescriptionCmd.Flags().StringVar(&extractToday, "today", "", "date used when the text has none (YYYY-MM-DD)")

	extractCmd.AddCommand(extractPrescriptionCmd)
	extractCmd.AddCommand(extractReceiptCmd)
	rootCmd.AddCommand(extractCmd)
}
