package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/output"
	"github.com/jackzampolin/cornell/internal/svcctx"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and customize LLM prompts",
	Long: `Prompts used by the LLM-backed capabilities are Go templates.

Defaults are built in. To customize one, run "cornell prompts export" and
edit the files under {home}/prompts. "cornell prompts reset <key>" restores
the default.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts and whether they are overridden",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadServices(cmd); err != nil {
			return err
		}
		resolver := svcctx.PromptsFrom(cmd.Context())
		type row struct {
			Key         string   `json:"key" yaml:"key"`
			Description string   `json:"description" yaml:"description"`
			Variables   []string `json:"variables" yaml:"variables"`
			Override    bool     `json:"override" yaml:"override"`
			Modified    bool     `json:"modified" yaml:"modified"`
		}
		var rows []row
		for _, p := range resolver.AllEmbedded() {
			resolved, err := resolver.Resolve(p.Key)
			if err != nil {
				return err
			}
			rows = append(rows, row{
				Key:         p.Key,
				Description: p.Description,
				Variables:   resolved.Variables,
				Override:    resolved.IsOverride,
				Modified:    resolved.Modified,
			})
		}
		return output.To(cmd.OutOrStdout(), format(), rows)
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the effective text of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadServices(cmd); err != nil {
			return err
		}
		p, err := svcctx.PromptsFrom(cmd.Context()).Resolve(args[0])
		if err != nil {
			return err
		}
		return output.To(cmd.OutOrStdout(), format(), p)
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write default prompts to {home}/prompts for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadServices(cmd); err != nil {
			return err
		}
		written, err := svcctx.PromptsFrom(cmd.Context()).ExportAll()
		if err != nil {
			return err
		}
		for _, key := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", key)
		}
		return nil
	},
}

var promptsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Remove a prompt override and use the built-in default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadServices(cmd); err != nil {
			return err
		}
		if err := svcctx.PromptsFrom(cmd.Context()).Reset(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", args[0])
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsExportCmd)
	promptsCmd.AddCommand(promptsResetCmd)
	rootCmd.AddCommand(promptsCmd)
}
