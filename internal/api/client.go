// Package api is the REST/JSON client for the dealership backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/kadilac/internal/models"
)

// ErrNotConfigured is returned when no backend URL is set
var ErrNotConfigured = errors.New("backend url not configured: run 'kadilac config set backend_url <url>'")

// Client talks to the dealership backend
type Client struct {
	baseURL  string
	token    string
	tenantID string
	http     *http.Client
	newKey   func() string
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTenant sets the X-Tenant-ID header sent on every request
func WithTenant(id string) Option {
	return func(c *Client) { c.tenantID = id }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient returns a backend client for baseURL
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		newKey:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StatusError is a non-2xx backend response
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-ID", c.tenantID)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", c.newKey())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("api: request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			serr.Message = eb.Message
			if serr.Message == "" {
				serr.Message = eb.Error
			}
		}
		if serr.Message == "" {
			serr.Message = strings.TrimSpace(string(data))
		}
		return serr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// GetVehicle fetches one inventory record
func (c *Client) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := c.do(ctx, http.MethodGet, "/api/vehicles/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVehicles lists inventory, optionally filtered by status
func (c *Client) ListVehicles(ctx context.Context, status models.VehicleStatus) ([]models.Vehicle, error) {
	path := "/api/vehicles"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var out []models.Vehicle
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCustomers lists buyer candidates
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaleResult is the backend acknowledgement of a recorded sale
type SaleResult struct {
	ID string `json:"id"`
}

// CreateSale records a sale. The backend marks the vehicle as sold.
func (c *Client) CreateSale(ctx context.Context, payload *models.SalePayload) (*SaleResult, error) {
	if payload == nil {
		return nil, errors.New("create sale: nil payload")
	}
	var out SaleResult
	if err := c.do(ctx, http.MethodPost, "/api/sales", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
