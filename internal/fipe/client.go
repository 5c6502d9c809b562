// Package fipe is a client for the FIPE vehicle valuation lookup service.
package fipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/models"
)

var _ cascade.Source = (*Client)(nil)

// Client talks to a FIPE API endpoint
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL, e.g. https://parallelum.com.br/fipe/api/v1
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fipe: %s returned %d", e.URL, e.StatusCode)
}

// segment maps a category to its FIPE path segment
func segment(cat models.Category) (string, error) {
	switch cat {
	case models.CategoryCars:
		return "carros", nil
	case models.CategoryMotorcycles:
		return "motos", nil
	case models.CategoryTrucks:
		return "caminhoes", nil
	default:
		return "", fmt.Errorf("fipe: unknown category %q", cat)
	}
}

// code decodes FIPE "codigo" fields, which are numbers for makes and
// models and strings for years.
type code string

func (c *code) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("fipe: codigo %s: %w", data, err)
	}
	*c = code(n.String())
	return nil
}

type wireOption struct {
	Code code   `json:"codigo"`
	Name string `json:"nome"`
}

type wireModels struct {
	Models []wireOption `json:"modelos"`
	Years  []wireOption `json:"anos"`
}

type wireValuation struct {
	Value          string `json:"Valor"`
	Make           string `json:"Marca"`
	Model          string `json:"Modelo"`
	ModelYear      int    `json:"AnoModelo"`
	Fuel           string `json:"Combustivel"`
	FipeCode       string `json:"CodigoFipe"`
	ReferenceMonth string `json:"MesReferencia"`
}

func toOptions(in []wireOption) []models.Option {
	out := make([]models.Option, 0, len(in))
	for _, o := range in {
		out = append(out, models.Option{Code: string(o.Code), Label: o.Name})
	}
	return out
}

func (c *Client) path(cat models.Category, parts ...string) (string, error) {
	seg, err := segment(cat)
	if err != nil {
		return "", err
	}
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, seg)
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.baseURL + "/" + strings.Join(escaped, "/"), nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fipe: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fipe: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	slog.Debug("fipe: request", "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, URL: u}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fipe: decode %s: %w", u, err)
	}
	return nil
}

// Makes lists the makes of a category
func (c *Client) Makes(ctx context.Context, cat models.Category) ([]models.Option, error) {
	u, err := c.path(cat, "marcas")
	if err != nil {
		return nil, err
	}
	var out []wireOption
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	return toOptions(out), nil
}

// Models lists the models of a make. The endpoint also returns every
// year of the make; those are ignored in favour of the per-model list.
func (c *Client) Models(ctx context.Context, cat models.Category, makeCode string) ([]models.Option, error) {
	u, err := c.path(cat, "marcas", makeCode, "modelos")
	if err != nil {
		return nil, err
	}
	var out wireModels
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	return toOptions(out.Models), nil
}

// Years lists the model years of a model
func (c *Client) Years(ctx context.Context, cat models.Category, makeCode, modelCode string) ([]models.Option, error) {
	u, err := c.path(cat, "marcas", makeCode, "modelos", modelCode, "anos")
	if err != nil {
		return nil, err
	}
	var out []wireOption
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	return toOptions(out), nil
}

// Valuation fetches the price record for a model year
func (c *Client) Valuation(ctx context.Context, cat models.Category, makeCode, modelCode, yearCode string) (*models.Valuation, error) {
	u, err := c.path(cat, "marcas", makeCode, "modelos", modelCode, "anos", yearCode)
	if err != nil {
		return nil, err
	}
	var out wireValuation
	if err := c.get(ctx, u, &out); err != nil {
		return nil, err
	}
	if out.Value == "" {
		return nil, fmt.Errorf("fipe: %s: empty valuation", u)
	}
	return &models.Valuation{
		Value:          out.Value,
		Make:           out.Make,
		Model:          out.Model,
		ModelYear:      out.ModelYear,
		Fuel:           out.Fuel,
		FipeCode:       out.FipeCode,
		ReferenceMonth: out.ReferenceMonth,
	}, nil
}
