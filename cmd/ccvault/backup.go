package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ccvault/internal/backup"
	"ccvault/internal/config"
)

func backupCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Incrementally copy session files into the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			mgr := backup.New(cfg.ClaudeRoot, cfg.VaultDir)

			if statusOnly {
				st, err := mgr.Status()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(st.InputProjects))
				for name := range st.InputProjects {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Printf("%-40s %d sessions (%d backed up)\n",
						name, st.InputProjects[name], st.OutputProjects[name])
				}
				fmt.Printf("pending=%d synced=%d\n", st.PendingFiles, st.SyncedFiles)
				return nil
			}

			stats, err := mgr.Run()
			if err != nil {
				return err
			}
			fmt.Println(stats)
			for _, e := range stats.Errors {
				fmt.Println("error:", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "Show what a backup would do, without writing")

	return cmd
}
