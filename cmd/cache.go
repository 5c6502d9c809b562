package cmd

import (
	"fmt"

	"github.com/marcus/kadilac/internal/db"
	"github.com/marcus/kadilac/internal/output"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Manage the FIPE lookup cache",
	GroupID: "system",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many option lists are cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getHomeDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		n, err := database.Count()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Fprintf(output.Stdout, "%d cached option lists\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached option list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getHomeDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		n, err := database.Purge()
		if err != nil {
			output.Error("clear cache: %v", err)
			return err
		}
		output.Success("Removed %d cached option lists", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
