package main

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sweeney/coffee-button/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration and exit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func printConfig(w io.Writer, cfg config.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Value"})
	if err := table.Bulk(cfg.Rows()); err != nil {
		return err
	}
	return table.Render()
}
