package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccvault/internal/config"
	"ccvault/internal/stats"
)

func statsCmd() *cobra.Command {
	var jsonPath string
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate usage statistics across the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			report, err := stats.Generate(cfg.VaultDir)
			if err != nil {
				return err
			}

			fmt.Println(report.Totals)
			if !report.Totals.FirstActivity.IsZero() {
				fmt.Printf("activity %s .. %s\n",
					report.Totals.FirstActivity.Format("2006-01-02"),
					report.Totals.LastActivity.Format("2006-01-02"))
			}
			for i, p := range report.Projects {
				if i >= top {
					break
				}
				fmt.Printf("%-40s sessions=%-4d messages=%-6d tokens=%d/%d\n",
					p.Name, p.Sessions, p.Messages, p.InputTokens, p.OutputTokens)
			}

			if jsonPath != "" {
				if err := report.SaveJSON(jsonPath); err != nil {
					return err
				}
				fmt.Println("wrote", jsonPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "Also write the full report to this JSON file")
	cmd.Flags().IntVar(&top, "top", 10, "Number of projects to list")

	return cmd
}
