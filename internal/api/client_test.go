package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/kadilac/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	srv      *httptest.Server
	lastSale models.SalePayload
	headers  http.Header
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.headers = r.Header.Clone()
		if r.PathValue("id") != "v1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"vehicle not found"}`))
			return
		}
		json.NewEncoder(w).Encode(models.Vehicle{
			ID: "v1", Make: "Fiat", Model: "Argo", Year: 2021, SalePrice: 68000,
			Status:  models.VehicleAvailable,
			TradeIn: &models.TradeInRecord{Value: 20000, Description: "Fiat Uno 2012"},
		})
	})
	mux.HandleFunc("GET /api/vehicles", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "available" {
			json.NewEncoder(w).Encode([]models.Vehicle{})
			return
		}
		json.NewEncoder(w).Encode([]models.Vehicle{{ID: "v1"}, {ID: "v2"}})
	})
	mux.HandleFunc("GET /api/customers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Customer{{ID: "42", Name: "Ana Souza"}})
	})
	mux.HandleFunc("POST /api/sales", func(w http.ResponseWriter, r *http.Request) {
		b.headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&b.lastSale); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if b.lastSale.BuyerID == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"buyer required"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"sale-7"}`))
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("  ", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetVehicle(t *testing.T) {
	b := newBackend(t)
	c, err := NewClient(b.srv.URL, time.Second, WithToken("tok"), WithTenant("store-1"))
	require.NoError(t, err)

	v, err := c.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Argo", v.Model)
	assert.Equal(t, 68000.0, v.SalePrice)
	require.NotNil(t, v.TradeIn)
	assert.Equal(t, 20000.0, v.TradeIn.Value)

	assert.Equal(t, "Bearer tok", b.headers.Get("Authorization"))
	assert.Equal(t, "store-1", b.headers.Get("X-Tenant-ID"))
	assert.Empty(t, b.headers.Get("Idempotency-Key"), "GET must not carry an idempotency key")
}

func TestGetVehicleNotFound(t *testing.T) {
	b := newBackend(t)
	c, _ := NewClient(b.srv.URL, time.Second)

	_, err := c.GetVehicle(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "vehicle not found", serr.Message)
}

func TestListVehiclesAndCustomers(t *testing.T) {
	b := newBackend(t)
	c, _ := NewClient(b.srv.URL, time.Second)

	vs, err := c.ListVehicles(context.Background(), models.VehicleAvailable)
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	cs, err := c.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "Ana Souza", cs[0].Name)
}

func TestCreateSale(t *testing.T) {
	b := newBackend(t)
	c, _ := NewClient(b.srv.URL, time.Second)

	payload := &models.SalePayload{
		VehicleID:     "v1",
		BuyerID:       "42",
		SellerName:    "Jane",
		AskingPrice:   68000,
		TradeInCredit: 20000,
		BalanceDue:    48000,
		SaleDate:      "2026-10-16",
		PaymentMethod: models.PaymentTradeIn,
	}
	res, err := c.CreateSale(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "sale-7", res.ID)
	assert.Equal(t, *payload, b.lastSale)

	key := b.headers.Get("Idempotency-Key")
	_, perr := uuid.Parse(key)
	assert.NoError(t, perr, "Idempotency-Key %q is not a uuid", key)
	assert.Equal(t, "application/json", b.headers.Get("Content-Type"))
}

func TestCreateSaleRejected(t *testing.T) {
	b := newBackend(t)
	c, _ := NewClient(b.srv.URL, time.Second)

	_, err := c.CreateSale(context.Background(), &models.SalePayload{VehicleID: "v1"})
	var serr *StatusError
	require.True(t, errors.As(err, &serr), "err = %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, serr.StatusCode)
	assert.Equal(t, "buyer required", serr.Message)

	_, err = c.CreateSale(context.Background(), nil)
	assert.Error(t, err)
}
