package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ccvault/internal/config"
	"ccvault/internal/export"
)

func convertCmd() *cobra.Command {
	var formatList string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Render backed-up sessions to markdown, HTML and JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var formats []export.Format
			for _, name := range strings.Split(formatList, ",") {
				f, err := export.ParseFormat(name)
				if err != nil {
					return err
				}
				formats = append(formats, f)
			}

			stats, err := export.ConvertAll(cfg.VaultDir, formats)
			if err != nil {
				return err
			}
			fmt.Println(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatList, "format", "markdown,html,json", "Comma-separated output formats")

	return cmd
}
