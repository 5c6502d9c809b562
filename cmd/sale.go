package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/marcus/kadilac/internal/api"
	"github.com/marcus/kadilac/internal/closing"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/internal/output"
	"github.com/marcus/kadilac/internal/receipt"
	"github.com/marcus/kadilac/pkg/console"
	"github.com/spf13/cobra"
)

var saleCmd = &cobra.Command{
	Use:     "sale",
	Short:   "Sale operations",
	GroupID: "sales",
}

var saleCloseCmd = &cobra.Command{
	Use:   "close <vehicle-id>",
	Short: "Close the sale of a vehicle",
	Long: `Open the sale closing dialog for a vehicle and record the sale.

The asking price starts at the vehicle's sale price. A trade-in is seeded
from, in order of priority:
  --trade-in                run the FIPE lookup first and use its value
  --trade-in-value/-desc    a value typed on the command line
  the vehicle record        a trade-in already attached to the vehicle

Seeding a trade-in fills the credit, writes a note and sets the payment
method to trade-in. Everything stays editable before submitting.`,
	Args: cobra.ExactArgs(1),
	RunE: runSaleClose,
}

func init() {
	rootCmd.AddCommand(saleCmd)
	saleCmd.AddCommand(saleCloseCmd)

	saleCloseCmd.Flags().Bool("trade-in", false, "Look up the trade-in value in FIPE before closing")
	saleCloseCmd.Flags().Bool("no-cache", false, "Skip the lookup cache for --trade-in")
	saleCloseCmd.Flags().String("trade-in-value", "", "Trade-in value (e.g. 20000 or \"R$ 20.000,00\")")
	saleCloseCmd.Flags().String("trade-in-desc", "", "Trade-in vehicle description")
	saleCloseCmd.Flags().String("seller", "", "Seller name (default: seller_name from config)")
	saleCloseCmd.Flags().Bool("no-receipt", false, "Do not print the receipt")
}

// tradeInFromFlags builds an external trade-in from --trade-in-value and
// --trade-in-desc. nil when no value was given.
func tradeInFromFlags(value, desc string) (*models.TradeInInfo, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if strings.TrimSpace(desc) != "" {
			return nil, fmt.Errorf("--trade-in-desc requires --trade-in-value")
		}
		return nil, nil
	}
	v := closing.ToNumber(value)
	if v <= 0 {
		return nil, fmt.Errorf("invalid trade-in value %q", value)
	}
	return &models.TradeInInfo{Valuation: v, VehicleDescription: strings.TrimSpace(desc)}, nil
}

// tradeInFromValuation converts a confirmed FIPE valuation into the
// external trade-in handed to the sale dialog.
func tradeInFromValuation(v models.ResolvedValuation) *models.TradeInInfo {
	return &models.TradeInInfo{
		Valuation:          closing.ToNumber(v.DisplayValue),
		VehicleDescription: v.CanonicalLabel,
	}
}

func findCustomer(customers []models.Customer, id string) *models.Customer {
	for i := range customers {
		if customers[i].ID == id {
			return &customers[i]
		}
	}
	return nil
}

func runSaleClose(cmd *cobra.Command, args []string) error {
	vehicleID := args[0]

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

	vehicle, err := backend.GetVehicle(ctx, vehicleID)
	if err != nil {
		if api.IsNotFound(err) {
			err = fmt.Errorf("vehicle %s not found", vehicleID)
		}
		output.Error("%v", err)
		return err
	}
	if vehicle.Status == models.VehicleSold {
		err := fmt.Errorf("vehicle %s is already sold", vehicleID)
		output.Error("%v", err)
		return err
	}

	// External trade-in, explicitly passed to the dialog
	var external *models.TradeInInfo
	if lookup, _ := cmd.Flags().GetBool("trade-in"); lookup {
		v, ok, err := lookupValuation(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if !ok {
			output.Info("Trade-in lookup canceled; sale not recorded")
			return nil
		}
		external = tradeInFromValuation(v)
	} else {
		value, _ := cmd.Flags().GetString("trade-in-value")
		desc, _ := cmd.Flags().GetString("trade-in-desc")
		if external, err = tradeInFromFlags(value, desc); err != nil {
			output.Error("%v", err)
			return err
		}
	}

	customers, err := backend.ListCustomers(ctx)
	if err != nil {
		output.Warning("could not load customers, enter the buyer id by hand: %v", err)
		customers = nil
	}

	seller, _ := cmd.Flags().GetString("seller")
	if seller == "" {
		seller = s.SellerName
	}

	form := closing.Open(*vehicle, external, seller, time.Now())
	slog.Info("sale dialog opened", "vehicle", vehicle.ID, "trade_in_source", form.TradeIn.Source.String())

	final, err := runProgram(console.NewSale(form, *vehicle, customers))
	if err != nil {
		output.Error("%v", err)
		return err
	}
	dialog, _ := final.(console.SaleModel)
	payload, ok := dialog.Result()
	if !ok {
		output.Info("Sale not recorded")
		return nil
	}

	result, err := backend.CreateSale(ctx, payload)
	if err != nil {
		output.Error("record sale: %v", err)
		return err
	}
	output.Success("Sale %s recorded: %s, balance due %s", result.ID, vehicle.Description(), closing.FormatBRL(payload.BalanceDue))

	if noReceipt, _ := cmd.Flags().GetBool("no-receipt"); noReceipt {
		return nil
	}
	doc := receipt.New(result.ID, *payload, *vehicle, findCustomer(customers, payload.BuyerID))
	out, err := receipt.Render(doc, receipt.Style(os.Stdout), receipt.TerminalWidth(os.Stdout, 80))
	if err != nil {
		output.Warning("%v", err)
		return nil
	}
	fmt.Fprint(output.Stdout, out)
	return nil
}
