package console

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/kadilac/internal/closing"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/pkg/console/theme"
)

// SaleModel is the sale closing dialog. The huh form writes straight into
// the closing.Form fields, so the balance under it is always computed from
// what is currently typed.
type SaleModel struct {
	Form      *closing.Form
	Vehicle   models.Vehicle
	Customers []models.Customer

	dateText string
	form     *huh.Form
	width    int

	StatusMessage string
	StatusIsError bool

	payload  *models.SalePayload
	canceled bool
}

// NewSale opens the dialog for an initialized closing form. customers feeds
// the buyer picker; when empty the buyer id is typed instead.
func NewSale(f *closing.Form, vehicle models.Vehicle, customers []models.Customer) SaleModel {
	m := SaleModel{
		Form:      f,
		Vehicle:   vehicle,
		Customers: customers,
		dateText:  f.SaleDate.Format(models.SaleDateLayout),
		width:     60,
	}
	m.buildForm()
	return m
}

// buildForm (re)creates the huh form bound to the closing fields. Bound
// values survive a rebuild.
func (m *SaleModel) buildForm() {
	f := m.Form

	var buyer huh.Field
	if len(m.Customers) > 0 {
		opts := make([]huh.Option[string], 0, len(m.Customers))
		for _, c := range m.Customers {
			label := c.Name
			if c.Document != "" {
				label += " · " + c.Document
			}
			opts = append(opts, huh.NewOption(label, c.ID))
		}
		buyer = huh.NewSelect[string]().
			Key("buyer").
			Title("Buyer").
			Options(opts...).
			Filtering(true).
			Value(&f.BuyerID)
	} else {
		buyer = huh.NewInput().
			Key("buyer").
			Title("Buyer id").
			Value(&f.BuyerID)
	}

	methods := make([]huh.Option[models.PaymentMethod], 0, len(models.AllPaymentMethods()))
	for _, pm := range models.AllPaymentMethods() {
		methods = append(methods, huh.NewOption(pm.Label(), pm))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("asking").
				Title("Asking price").
				Value(&f.AskingPrice),
			huh.NewInput().
				Key("trade_in").
				Title("Trade-in credit").
				Value(&f.TradeInCredit),
			buyer,
			huh.NewInput().
				Key("seller").
				Title("Seller").
				Value(&f.SellerName),
			huh.NewInput().
				Key("date").
				Title("Sale date").
				Placeholder(models.SaleDateLayout).
				Value(&m.dateText),
			huh.NewSelect[models.PaymentMethod]().
				Key("payment").
				Title("Payment method").
				Options(methods...).
				Value(&f.PaymentMethod),
			huh.NewText().
				Key("notes").
				Title("Notes").
				Value(&f.Notes),
		),
	).WithShowHelp(true).WithWidth(m.width)
}

// Result returns the submitted payload, or false when the dialog was
// canceled.
func (m SaleModel) Result() (*models.SalePayload, bool) {
	if m.canceled || m.payload == nil {
		return nil, false
	}
	return m.payload, true
}

// Canceled reports whether the dialog was dismissed
func (m SaleModel) Canceled() bool {
	return m.canceled
}

// Init initializes the form
func (m SaleModel) Init() tea.Cmd {
	return m.form.Init()
}

// submit validates and builds the payload. On failure the form is rebuilt
// with the typed values kept and the error shown in the status line.
func (m SaleModel) submit() (SaleModel, tea.Cmd) {
	date, err := time.Parse(models.SaleDateLayout, strings.TrimSpace(m.dateText))
	if err != nil {
		return m.reopen(fmt.Sprintf("Sale date must look like %s", models.SaleDateLayout))
	}
	m.Form.SaleDate = date

	payload, err := m.Form.Submit()
	if err != nil {
		var verr *closing.ValidationError
		if errors.As(err, &verr) {
			slog.Info("sale form incomplete", "missing", strings.Join(verr.Missing, ","))
		}
		return m.reopen(err.Error())
	}

	m.payload = payload
	slog.Info("sale submitted", "vehicle", payload.VehicleID, "buyer", payload.BuyerID, "balance_due", payload.BalanceDue)
	return m, tea.Quit
}

func (m SaleModel) reopen(status string) (SaleModel, tea.Cmd) {
	m.StatusMessage = status
	m.StatusIsError = true
	m.buildForm()
	return m, tea.Batch(m.form.Init(), clearStatusAfter(3*time.Second))
}

// Update handles messages
func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(max(msg.Width-4, 30), 80)
		m.form = m.form.WithWidth(m.width)
		return m, nil

	case ClearStatusMsg:
		m.StatusMessage = ""
		m.StatusIsError = false
		return m, nil

	case tea.KeyMsg:
		// esc belongs to the form: it leaves the buyer filter
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		m.canceled = true
		return m, tea.Quit
	}
	return m, cmd
}

// BalanceLine renders the live balance due: amount-owed style when
// positive, neutral otherwise.
func (m SaleModel) BalanceLine() string {
	balance := m.Form.BalanceDue()
	style := theme.Settled
	if closing.Owed(balance) {
		style = theme.Owed
	}
	return theme.FieldName.Render("Balance") + " " + style.Render(closing.FormatBRL(balance))
}

// View renders the dialog
func (m SaleModel) View() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Close sale: " + m.Vehicle.Description()))
	b.WriteString("\n")
	if m.Form.TradeIn.Source != closing.TradeInNone {
		b.WriteString(theme.MutedText.Render(fmt.Sprintf("Trade-in seeded from %s record", m.Form.TradeIn.Source)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.form.View())
	b.WriteString("\n\n")
	b.WriteString(m.BalanceLine())
	b.WriteString("\n")
	if m.StatusMessage != "" {
		style := theme.InfoText
		if m.StatusIsError {
			style = theme.ErrorText
		}
		b.WriteString(style.Render(m.StatusMessage))
		b.WriteString("\n")
	}
	b.WriteString(theme.Help.Render("ctrl+c cancel"))
	return b.String()
}
