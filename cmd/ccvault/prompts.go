package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccvault/internal/config"
	"ccvault/internal/prompts"
)

func promptsCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Extract cleaned user prompts from the vault into YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			projects, err := prompts.Extract(cfg.VaultDir)
			if err != nil {
				return err
			}

			total := 0
			for _, p := range projects {
				for _, s := range p.Sessions {
					total += len(s.Prompts)
				}
			}

			if err := prompts.Save(projects, outPath); err != nil {
				return err
			}
			fmt.Printf("wrote %d prompts from %d projects to %s\n", total, len(projects), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "prompts.yaml", "Output YAML file")

	return cmd
}
