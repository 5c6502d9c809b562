package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcus/kadilac/internal/models"
)

func TestTradeInFromFlags(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		desc      string
		wantNil   bool
		wantValue float64
		wantErr   bool
	}{
		{name: "none", wantNil: true},
		{name: "plain number", value: "20000", desc: "Fiat Uno 2012", wantValue: 20000},
		{name: "brl format", value: "R$ 20.000,50", wantValue: 20000.5},
		{name: "zero", value: "0", wantErr: true},
		{name: "garbage", value: "abc", wantErr: true},
		{name: "desc without value", desc: "Fiat Uno", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tradeInFromFlags(tt.value, tt.desc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Valuation != tt.wantValue || got.VehicleDescription != tt.desc {
				t.Errorf("got %+v, want value %v desc %q", got, tt.wantValue, tt.desc)
			}
		})
	}
}

func TestTradeInFromValuation(t *testing.T) {
	got := tradeInFromValuation(models.ResolvedValuation{
		DisplayValue:   "R$ 31.250,00",
		CanonicalLabel: "VW Gol 1.6 2015",
	})
	if got.Valuation != 31250 || got.VehicleDescription != "VW Gol 1.6 2015" {
		t.Errorf("tradeInFromValuation = %+v", got)
	}
}

func TestFindCustomer(t *testing.T) {
	customers := []models.Customer{{ID: "1", Name: "Ana"}, {ID: "2", Name: "Bruno"}}
	if c := findCustomer(customers, "2"); c == nil || c.Name != "Bruno" {
		t.Errorf("findCustomer(2) = %+v", c)
	}
	if c := findCustomer(customers, "9"); c != nil {
		t.Errorf("findCustomer(9) = %+v, want nil", c)
	}
}

func TestSaleCloseRejectsSoldVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/vehicles/v1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"v1","make":"Fiat","model":"Argo","year":2021,"sale_price":68000,"status":"sold"}`))
	}))
	defer srv.Close()
	t.Setenv("KADILAC_BACKEND_URL", srv.URL)

	_, err := execute(t, t.TempDir(), "sale", "close", "v1")
	if err == nil || !strings.Contains(err.Error(), "already sold") {
		t.Errorf("err = %v, want already sold", err)
	}

	_, err = execute(t, t.TempDir(), "sale", "close", "v404")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSaleCloseBadTradeInValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"v1","make":"Fiat","model":"Argo","year":2021,"sale_price":68000,"status":"available"}`))
	}))
	defer srv.Close()
	t.Setenv("KADILAC_BACKEND_URL", srv.URL)

	_, stderr, err := executeBoth(t, t.TempDir(), "sale", "close", "v1", "--trade-in-value", "abc")
	if err == nil || !strings.Contains(err.Error(), "invalid trade-in value") {
		t.Fatalf("err = %v, want invalid trade-in value", err)
	}
	if !strings.Contains(stderr, "ERROR:") || !strings.Contains(stderr, "invalid trade-in value") {
		t.Errorf("stderr = %q, want the error reported", stderr)
	}
}

func TestSaleCloseAcceptsNoCache(t *testing.T) {
	f := saleCloseCmd.Flags().Lookup("no-cache")
	if f == nil {
		t.Fatal("sale close has no --no-cache flag")
	}
	if err := saleCloseCmd.Flags().Set("no-cache", "true"); err != nil {
		t.Fatal(err)
	}
	defer resetFlags(saleCloseCmd)
	if noCache, _ := saleCloseCmd.Flags().GetBool("no-cache"); !noCache {
		t.Error("--no-cache not readable by the trade-in lookup")
	}
}
