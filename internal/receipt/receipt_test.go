package receipt

import (
	"os"
	"strings"
	"testing"

	"github.com/marcus/kadilac/internal/models"
)

func sampleDocument() Document {
	return New("sale-7", models.SalePayload{
		VehicleID:     "v1",
		BuyerID:       "42",
		SellerName:    "Jane",
		AskingPrice:   68000,
		TradeInCredit: 20000,
		BalanceDue:    48000,
		SaleDate:      "2026-10-16",
		PaymentMethod: models.PaymentTradeIn,
		Notes:         "Trade-in: Fiat Uno 2012 valued at R$ 20.000,00",
	}, models.Vehicle{ID: "v1", Make: "Fiat", Model: "Argo", Year: 2021, Plate: "ABC1D23"},
		&models.Customer{ID: "42", Name: "Ana Souza", Document: "123.456.789-00"})
}

func TestMarkdown(t *testing.T) {
	md := sampleDocument().Markdown()

	wants := []string{
		"# Sale receipt sale-7",
		"**Seller:** Jane",
		"Ana Souza (123.456.789-00)",
		"Fiat Argo 2021 · plate ABC1D23",
		"| Asking price | R$ 68.000,00 |",
		"| Trade-in credit | -R$ 20.000,00 |",
		"**R$ 48.000,00**",
		"Payment method: Trade-in",
		"## Notes",
	}
	for _, w := range wants {
		if !strings.Contains(md, w) {
			t.Errorf("markdown missing %q:\n%s", w, md)
		}
	}
}

func TestMarkdownWithoutTradeInOrBuyer(t *testing.T) {
	d := New("", models.SalePayload{BuyerID: "9", AskingPrice: 1000, BalanceDue: 1000, PaymentMethod: models.PaymentPix},
		models.Vehicle{Make: "VW", Model: "Gol"}, nil)
	md := d.Markdown()

	if strings.Contains(md, "Trade-in credit") {
		t.Error("trade-in row rendered without credit")
	}
	if strings.Contains(md, "## Notes") {
		t.Error("notes section rendered without notes")
	}
	if !strings.Contains(md, "**Buyer:** #9") {
		t.Errorf("buyer id fallback missing:\n%s", md)
	}
	if !strings.HasPrefix(md, "# Sale receipt\n") {
		t.Errorf("title without sale id wrong:\n%s", md)
	}
}

func TestRender(t *testing.T) {
	for _, style := range []string{"notty", "dark"} {
		t.Run(style, func(t *testing.T) {
			out, err := Render(sampleDocument(), style, 60)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(out, "Sale receipt sale-7") {
				t.Errorf("rendered output missing title:\n%s", out)
			}

			var buyerLine, dateLine string
			for _, line := range strings.Split(out, "\n") {
				if strings.Contains(line, "Buyer") {
					buyerLine = line
				}
				if strings.Contains(line, "Date") {
					dateLine = line
				}
			}
			if !strings.Contains(buyerLine, "Ana Souza (123.456.789-00)") {
				t.Errorf("buyer not on one line, got %q:\n%s", buyerLine, out)
			}
			if dateLine == "" || strings.Contains(dateLine, "Seller") || strings.Contains(dateLine, "Buyer") {
				t.Errorf("header fields share a line: %q", dateLine)
			}
		})
	}
}

func TestMarkdownNegativeTradeInCredit(t *testing.T) {
	d := New("", models.SalePayload{AskingPrice: 1000, TradeInCredit: -500, BalanceDue: 1500},
		models.Vehicle{Make: "VW", Model: "Gol"}, nil)
	md := d.Markdown()

	if !strings.Contains(md, "| Trade-in credit | R$ 500,00 |") {
		t.Errorf("negative credit row wrong:\n%s", md)
	}
	if strings.Contains(md, "--R$") {
		t.Errorf("doubled sign in:\n%s", md)
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := TerminalWidth(f, 72); got != 72 {
		t.Errorf("TerminalWidth(file) = %d, want 72", got)
	}
	if got := Style(f); got != "notty" {
		t.Errorf("Style(file) = %q, want notty", got)
	}
}
