// Package closing computes the sale closing dialog: trade-in seeding,
// the live balance due, validation and the submitted payload.
package closing

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcus/kadilac/internal/models"
)

// TradeInSource says where a seeded trade-in came from.
type TradeInSource int

const (
	TradeInNone TradeInSource = iota
	TradeInExternal
	TradeInPersisted
)

func (s TradeInSource) String() string {
	switch s {
	case TradeInExternal:
		return "external"
	case TradeInPersisted:
		return "persisted"
	default:
		return "none"
	}
}

// TradeIn is the trade-in chosen at dialog open, resolved once.
type TradeIn struct {
	Source      TradeInSource
	Value       float64
	Description string
}

// SelectTradeIn picks the trade-in to seed from. An externally supplied
// trade-in always wins over one persisted on the vehicle.
func SelectTradeIn(external *models.TradeInInfo, vehicle models.Vehicle) TradeIn {
	switch {
	case external != nil:
		return TradeIn{Source: TradeInExternal, Value: external.Valuation, Description: external.VehicleDescription}
	case vehicle.TradeIn != nil:
		return TradeIn{Source: TradeInPersisted, Value: vehicle.TradeIn.Value, Description: vehicle.TradeIn.Description}
	default:
		return TradeIn{Source: TradeInNone}
	}
}

// Form is the open dialog. Fields hold raw text exactly as typed.
type Form struct {
	VehicleID     string
	AskingPrice   string
	TradeInCredit string
	SaleDate      time.Time
	BuyerID       string
	SellerName    string
	PaymentMethod models.PaymentMethod
	Notes         string

	TradeIn TradeIn
}

// Open initializes the dialog for vehicle. now stamps the sale date and
// seller is the default seller name (may be empty).
func Open(vehicle models.Vehicle, external *models.TradeInInfo, seller string, now time.Time) *Form {
	f := &Form{
		VehicleID:     vehicle.ID,
		AskingPrice:   FormatInput(vehicle.SalePrice),
		SaleDate:      now,
		SellerName:    seller,
		PaymentMethod: models.DefaultPaymentMethod,
	}
	f.TradeIn = SelectTradeIn(external, vehicle)
	if f.TradeIn.Source != TradeInNone {
		f.TradeInCredit = FormatInput(f.TradeIn.Value)
		f.Notes = TradeInNote(f.TradeIn)
		f.PaymentMethod = models.PaymentTradeIn
	}
	return f
}

// TradeInNote is the note generated when a trade-in seeds the dialog.
func TradeInNote(t TradeIn) string {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		desc = "vehicle"
	}
	return fmt.Sprintf("Trade-in: %s valued at %s", desc, FormatBRL(t.Value))
}

// BalanceDue is asking price minus trade-in credit. Blank or non-numeric
// fields count as zero; the result may be negative.
func (f *Form) BalanceDue() float64 {
	return BalanceDue(f.AskingPrice, f.TradeInCredit)
}

// BalanceDue computes toNumber(asking) - toNumber(tradeIn).
func BalanceDue(asking, tradeIn string) float64 {
	return ToNumber(asking) - ToNumber(tradeIn)
}

// Owed reports whether balance should be shown in the amount-owed style.
// Zero and negative balances use the neutral style.
func Owed(balance float64) bool {
	return balance > 0
}

// Validate returns a *ValidationError naming every blank required field.
func (f *Form) Validate() error {
	var verr ValidationError
	if strings.TrimSpace(f.AskingPrice) == "" {
		verr.Missing = append(verr.Missing, "asking price")
	}
	if strings.TrimSpace(f.BuyerID) == "" {
		verr.Missing = append(verr.Missing, "buyer")
	}
	if strings.TrimSpace(f.SellerName) == "" {
		verr.Missing = append(verr.Missing, "seller name")
	}
	if verr.HasErrors() {
		return &verr
	}
	return nil
}

// Submit validates the form and builds the payload. No payload is built
// when validation fails.
func (f *Form) Submit() (*models.SalePayload, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	asking := ToNumber(f.AskingPrice)
	tradeIn := ToNumber(f.TradeInCredit)
	method := f.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}
	return &models.SalePayload{
		VehicleID:     f.VehicleID,
		BuyerID:       strings.TrimSpace(f.BuyerID),
		SellerName:    strings.TrimSpace(f.SellerName),
		AskingPrice:   asking,
		TradeInCredit: tradeIn,
		BalanceDue:    asking - tradeIn,
		SaleDate:      f.SaleDate.Format(models.SaleDateLayout),
		PaymentMethod: method,
		Notes:         f.Notes,
	}, nil
}

// ValidationError lists the required fields left blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 1 {
		return e.Missing[0] + " is required"
	}
	return strings.Join(e.Missing, ", ") + " are required"
}

// HasErrors returns true if any field is missing
func (e *ValidationError) HasErrors() bool {
	return len(e.Missing) > 0
}
