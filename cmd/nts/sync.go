package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nts-go/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect synchronization",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where each collection was loaded from",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), "SyncStatus", func(a *app.NtsApp) error {
			s := a.Status(cmd.Context())
			availability := "unavailable"
			if s.RemoteAvailable {
				availability = "available"
			}
			if s.RemoteType == "none" {
				availability = "disabled"
			}
			fmt.Printf("Remote: %s (%s)\n\n", s.RemoteType, availability)
			for _, c := range s.Collections {
				fmt.Printf("%-11s %5d  %-6s  %s\n", c.Name, c.Count, c.Source, c.State)
			}
			return nil
		})
	},
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
