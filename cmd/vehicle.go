package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/marcus/kadilac/internal/closing"
	"github.com/marcus/kadilac/internal/inventory"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/internal/output"
	"github.com/spf13/cobra"
)

var vehicleCmd = &cobra.Command{
	Use:     "vehicle",
	Short:   "Inventory operations",
	GroupID: "sales",
}

var vehicleSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy search the inventory",
	Long: `Search vehicles by make, model, year, plate and color. Letters only need
to appear in order, so "cor19" finds a 2019 Corolla. With no query every
vehicle with the given status is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		statusStr, _ := cmd.Flags().GetString("status")
		status := models.VehicleStatus(strings.ToLower(statusStr))
		if statusStr == "all" {
			status = ""
		}
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := loadSettings()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		backend, err := newBackend(s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		vehicles, err := backend.ListVehicles(ctx, status)
		if err != nil {
			output.Error("list vehicles: %v", err)
			return err
		}
		matches := inventory.Search(vehicles, query, limit)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out := make([]models.Vehicle, len(matches))
			for i, m := range matches {
				out[i] = m.Vehicle
			}
			return output.JSON(out)
		}
		if len(matches) == 0 {
			if query != "" {
				fmt.Fprintf(output.Stdout, "No vehicles matching '%s'\n", query)
			} else {
				fmt.Fprintln(output.Stdout, "No vehicles")
			}
			return nil
		}

		tbl := output.NewTable("ID", "VEHICLE", "PLATE", "MILEAGE", "PRICE", "TRADE-IN").RightAlign(3).RightAlign(4)
		for _, m := range matches {
			v := m.Vehicle
			mileage := ""
			if v.Mileage > 0 {
				mileage = humanize.FormatInteger("#.###,", v.Mileage) + " km"
			}
			tradeIn := ""
			if v.TradeIn != nil {
				tradeIn = closing.FormatBRL(v.TradeIn.Value)
			}
			tbl.Row(v.ID, v.Description(), v.Plate, mileage, closing.FormatBRL(v.SalePrice), tradeIn)
		}
		tbl.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vehicleCmd)
	vehicleCmd.AddCommand(vehicleSearchCmd)

	vehicleSearchCmd.Flags().StringP("status", "s", string(models.VehicleAvailable), "Vehicle status to search (available, reserved, sold, all)")
	vehicleSearchCmd.Flags().IntP("limit", "n", 20, "Maximum results (0 = no limit)")
	vehicleSearchCmd.Flags().Bool("json", false, "Output as JSON")
}
