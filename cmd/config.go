package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/kadilac/internal/config"
	"github.com/marcus/kadilac/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Read and write settings",
	Long:    fmt.Sprintf("Settings live in config.json in the data directory.\n\nKeys: %s", strings.Join(config.Keys(), ", ")),
	GroupID: "system",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := getHomeDir()
		if len(args) == 1 {
			v, err := config.Get(dir, args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			fmt.Fprintln(output.Stdout, v)
			return nil
		}

		tbl := output.NewTable("KEY", "VALUE")
		for _, key := range config.Keys() {
			v, err := config.Get(dir, key)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			tbl.Row(key, maskSecret(key, v))
		}
		tbl.Print()
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(getHomeDir(), args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("%s updated", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// maskSecret hides all but the last four characters of the token in listings
func maskSecret(key, v string) string {
	if key != "token" || v == "" {
		return v
	}
	if len(v) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + v[len(v)-4:]
}
