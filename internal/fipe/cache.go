package fipe

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/models"
	"golang.org/x/sync/errgroup"
)

// Store persists option lists between runs
type Store interface {
	Get(key string, ttl time.Duration) ([]byte, bool, error)
	Put(key string, payload []byte) error
}

// CachedSource serves option lists from a Store when fresh and falls
// through to the wrapped source otherwise. Valuations always go upstream.
// Store failures are logged and treated as misses.
type CachedSource struct {
	src   cascade.Source
	store Store
	ttl   time.Duration
}

var _ cascade.Source = (*CachedSource)(nil)

// NewCachedSource wraps src with store
func NewCachedSource(src cascade.Source, store Store, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, store: store, ttl: ttl}
}

func cacheKey(kind string, cat models.Category, parts ...string) string {
	return kind + ":" + strings.Join(append([]string{string(cat)}, parts...), "/")
}

func (c *CachedSource) options(key string, fetch func() ([]models.Option, error)) ([]models.Option, error) {
	if payload, ok, err := c.store.Get(key, c.ttl); err != nil {
		slog.Warn("fipe cache: read failed", "key", key, "err", err)
	} else if ok {
		var opts []models.Option
		if err := json.Unmarshal(payload, &opts); err == nil {
			slog.Debug("fipe cache: hit", "key", key)
			return opts, nil
		}
		slog.Warn("fipe cache: corrupt entry", "key", key)
	}

	opts, err := fetch()
	if err != nil {
		return nil, err
	}
	// Empty lists are not cached so a transient upstream glitch is not sticky
	if len(opts) > 0 {
		payload, _ := json.Marshal(opts)
		if err := c.store.Put(key, payload); err != nil {
			slog.Warn("fipe cache: write failed", "key", key, "err", err)
		}
	}
	return opts, nil
}

// Makes lists the makes of a category
func (c *CachedSource) Makes(ctx context.Context, cat models.Category) ([]models.Option, error) {
	return c.options(cacheKey("makes", cat), func() ([]models.Option, error) {
		return c.src.Makes(ctx, cat)
	})
}

// Models lists the models of a make
func (c *CachedSource) Models(ctx context.Context, cat models.Category, makeCode string) ([]models.Option, error) {
	return c.options(cacheKey("models", cat, makeCode), func() ([]models.Option, error) {
		return c.src.Models(ctx, cat, makeCode)
	})
}

// Years lists the model years of a model
func (c *CachedSource) Years(ctx context.Context, cat models.Category, makeCode, modelCode string) ([]models.Option, error) {
	return c.options(cacheKey("years", cat, makeCode, modelCode), func() ([]models.Option, error) {
		return c.src.Years(ctx, cat, makeCode, modelCode)
	})
}

// Valuation fetches the price record, bypassing the cache
func (c *CachedSource) Valuation(ctx context.Context, cat models.Category, makeCode, modelCode, yearCode string) (*models.Valuation, error) {
	return c.src.Valuation(ctx, cat, makeCode, modelCode, yearCode)
}

// WarmResult reports how many makes were fetched per category
type WarmResult struct {
	Category models.Category
	Makes    int
}

// Warm fetches the make list of every category concurrently, at most
// limit at a time. The first error cancels the rest.
func Warm(ctx context.Context, src cascade.Source, cats []models.Category, limit int) ([]WarmResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	results := make([]WarmResult, len(cats))
	for i, cat := range cats {
		g.Go(func() error {
			opts, err := src.Makes(ctx, cat)
			if err != nil {
				return err
			}
			results[i] = WarmResult{Category: cat, Makes: len(opts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
