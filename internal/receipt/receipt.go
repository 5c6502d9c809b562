// Package receipt builds the printable sale summary. A Document is built
// from the submitted sale and passed explicitly to the renderer.
package receipt

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/kadilac/internal/closing"
	"github.com/marcus/kadilac/internal/models"
	"golang.org/x/term"
)

// Document is everything printed on a sale receipt
type Document struct {
	SaleID  string
	Sale    models.SalePayload
	Vehicle models.Vehicle
	Buyer   *models.Customer
}

// New assembles a document for a recorded sale
func New(saleID string, sale models.SalePayload, vehicle models.Vehicle, buyer *models.Customer) Document {
	return Document{SaleID: saleID, Sale: sale, Vehicle: vehicle, Buyer: buyer}
}

// Markdown renders the document as markdown
func (d Document) Markdown() string {
	var b strings.Builder

	title := "Sale receipt"
	if d.SaleID != "" {
		title += " " + d.SaleID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	// One list item per field; glamour reflows plain lines into a paragraph
	fmt.Fprintf(&b, "- **Date:** %s\n", d.Sale.SaleDate)
	fmt.Fprintf(&b, "- **Seller:** %s\n", d.Sale.SellerName)
	if d.Buyer != nil {
		buyer := d.Buyer.Name
		if d.Buyer.Document != "" {
			buyer += " (" + d.Buyer.Document + ")"
		}
		fmt.Fprintf(&b, "- **Buyer:** %s\n\n", buyer)
	} else {
		fmt.Fprintf(&b, "- **Buyer:** #%s\n\n", d.Sale.BuyerID)
	}

	b.WriteString("## Vehicle\n\n")
	fmt.Fprintf(&b, "%s", d.Vehicle.Description())
	if d.Vehicle.Plate != "" {
		fmt.Fprintf(&b, " · plate %s", d.Vehicle.Plate)
	}
	b.WriteString("\n\n")

	b.WriteString("## Payment\n\n")
	b.WriteString("| Item | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Asking price | %s |\n", closing.FormatBRL(d.Sale.AskingPrice))
	if d.Sale.TradeInCredit != 0 {
		fmt.Fprintf(&b, "| Trade-in credit | %s |\n", closing.FormatBRL(-d.Sale.TradeInCredit))
	}
	fmt.Fprintf(&b, "| **Balance due** | **%s** |\n\n", closing.FormatBRL(d.Sale.BalanceDue))
	fmt.Fprintf(&b, "Payment method: %s\n", d.Sale.PaymentMethod.Label())

	if notes := strings.TrimSpace(d.Sale.Notes); notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", notes)
	}
	return b.String()
}

// Render renders the document for a terminal of the given width.
// style is a glamour style name ("dark", "light", "notty", ...).
func Render(d Document, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("receipt renderer: %w", err)
	}
	out, err := r.Render(d.Markdown())
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return out, nil
}

// TerminalWidth returns the width of f when it is a terminal, or fallback
func TerminalWidth(f *os.File, fallback int) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// Style picks the glamour style for f: "notty" when it is not a terminal
func Style(f *os.File) string {
	if term.IsTerminal(int(f.Fd())) {
		return "dark"
	}
	return "notty"
}
