package models

import (
	"fmt"
	"time"
)

// Option is one selectable entry at a cascade level.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Category is the top level of the valuation cascade.
type Category string

const (
	CategoryCars        Category = "cars"
	CategoryMotorcycles Category = "motorcycles"
	CategoryTrucks      Category = "trucks"
)

// IsValidCategory returns true if c is a known category
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryCars, CategoryMotorcycles, CategoryTrucks:
		return true
	}
	return false
}

// AllCategories returns the categories in display order
func AllCategories() []Category {
	return []Category{CategoryCars, CategoryMotorcycles, CategoryTrucks}
}

// Label returns the display name of the category
func (c Category) Label() string {
	switch c {
	case CategoryCars:
		return "Cars"
	case CategoryMotorcycles:
		return "Motorcycles"
	case CategoryTrucks:
		return "Trucks"
	default:
		return string(c)
	}
}

// CategoryOptions returns the categories as selector options.
func CategoryOptions() []Option {
	cats := AllCategories()
	opts := make([]Option, len(cats))
	for i, c := range cats {
		opts[i] = Option{Code: string(c), Label: c.Label()}
	}
	return opts
}

// Level identifies a position in the valuation cascade.
type Level int

const (
	LevelCategory Level = iota
	LevelMake
	LevelModel
	LevelYear
)

// LevelCount is the number of cascade levels.
const LevelCount = 4

func (l Level) String() string {
	switch l {
	case LevelCategory:
		return "category"
	case LevelMake:
		return "make"
	case LevelModel:
		return "model"
	case LevelYear:
		return "year"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valuation is the record returned by the final lookup.
type Valuation struct {
	Value          string `json:"value"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	ModelYear      int    `json:"model_year"`
	Fuel           string `json:"fuel"`
	FipeCode       string `json:"fipe_code"`
	ReferenceMonth string `json:"reference_month"`
}

// ResolvedValuation is the price/label pair offered once every level is selected.
type ResolvedValuation struct {
	DisplayValue   string `json:"display_value"`
	CanonicalLabel string `json:"canonical_label"`
	FipeCode       string `json:"fipe_code,omitempty"`
	Fuel           string `json:"fuel,omitempty"`
	ReferenceMonth string `json:"reference_month,omitempty"`
	ModelYear      int    `json:"model_year,omitempty"`
}

// Resolve converts a lookup record into the value handed back to forms.
func (v Valuation) Resolve() ResolvedValuation {
	label := v.Model
	if v.Make != "" {
		label = v.Make + " " + v.Model
	}
	if v.ModelYear > 0 {
		label = fmt.Sprintf("%s %d", label, v.ModelYear)
	}
	return ResolvedValuation{
		DisplayValue:   v.Value,
		CanonicalLabel: label,
		FipeCode:       v.FipeCode,
		Fuel:           v.Fuel,
		ReferenceMonth: v.ReferenceMonth,
		ModelYear:      v.ModelYear,
	}
}

// VehicleStatus is the inventory status reported by the backend
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "available"
	VehicleReserved  VehicleStatus = "reserved"
	VehicleSold      VehicleStatus = "sold"
)

// TradeInRecord is a trade-in already persisted on a vehicle.
type TradeInRecord struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Vehicle is an inventory record.
type Vehicle struct {
	ID        string         `json:"id"`
	Make      string         `json:"make"`
	Model     string         `json:"model"`
	Year      int            `json:"year"`
	Plate     string         `json:"plate"`
	Color     string         `json:"color,omitempty"`
	Mileage   int            `json:"mileage,omitempty"`
	SalePrice float64        `json:"sale_price"`
	Status    VehicleStatus  `json:"status"`
	TradeIn   *TradeInRecord `json:"trade_in,omitempty"`
}

// Description returns "Make Model Year", skipping empty parts
func (v Vehicle) Description() string {
	s := v.Make
	if v.Model != "" {
		if s != "" {
			s += " "
		}
		s += v.Model
	}
	if v.Year > 0 {
		s = fmt.Sprintf("%s %d", s, v.Year)
	}
	return s
}

// Customer is a buyer candidate.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// TradeInInfo is a trade-in handed over by the intake workflow.
type TradeInInfo struct {
	Valuation          float64 `json:"valuation"`
	VehicleDescription string  `json:"vehicle_description"`
}

// PaymentMethod is how the balance is settled
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentPix       PaymentMethod = "pix"
	PaymentFinancing PaymentMethod = "financing"
	PaymentCard      PaymentMethod = "card"
	PaymentTradeIn   PaymentMethod = "trade_in"
)

// DefaultPaymentMethod is used when nothing seeds the method.
const DefaultPaymentMethod = PaymentCash

// AllPaymentMethods returns the payment methods in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentPix, PaymentFinancing, PaymentCard, PaymentTradeIn}
}

// IsValidPaymentMethod returns true if p is a known payment method
func IsValidPaymentMethod(p PaymentMethod) bool {
	for _, m := range AllPaymentMethods() {
		if m == p {
			return true
		}
	}
	return false
}

// Label returns the display name of the payment method
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Cash"
	case PaymentPix:
		return "Pix"
	case PaymentFinancing:
		return "Financing"
	case PaymentCard:
		return "Card"
	case PaymentTradeIn:
		return "Trade-in"
	default:
		return string(p)
	}
}

// SaleClosing holds the sale dialog fields as typed.
type SaleClosing struct {
	AskingPrice   string
	TradeInCredit string
	SaleDate      time.Time
	BuyerID       string
	SellerName    string
	PaymentMethod PaymentMethod
	Notes         string
}

// SalePayload is the coerced submission handed to the backend.
type SalePayload struct {
	VehicleID     string        `json:"vehicle_id"`
	BuyerID       string        `json:"buyer_id"`
	SellerName    string        `json:"seller_name"`
	AskingPrice   float64       `json:"asking_price"`
	TradeInCredit float64       `json:"trade_in_credit"`
	BalanceDue    float64       `json:"balance_due"`
	SaleDate      string        `json:"sale_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
}

// SaleDateLayout is the wire format of SalePayload.SaleDate.
const SaleDateLayout = "2006-01-02"

// Config is the persisted tool configuration
type Config struct {
	BackendURL     string `json:"backend_url,omitempty"`
	Token          string `json:"token,omitempty"`
	TenantID       string `json:"tenant_id,omitempty"`
	FipeURL        string `json:"fipe_url,omitempty"`
	CacheTTL       string `json:"cache_ttl,omitempty"`
	SellerName     string `json:"seller_name,omitempty"`
	RequestTimeout string `json:"request_timeout,omitempty"`
}
