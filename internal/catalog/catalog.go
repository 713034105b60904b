// Package catalog resolves scanned codes and selections against the in-memory
// product catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"supply-desk/internal/model"

	"github.com/rs/zerolog"
)

const (
	initialRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
)

// Catalog holds the most recent product snapshot. Lookups are served from the
// snapshot while a refresh is in flight.
type Catalog struct {
	loader Loader
	logger zerolog.Logger

	// retryBackoff is the first-load retry step, growing per attempt.
	retryBackoff time.Duration

	mu       sync.RWMutex
	products []model.ProductBrief
	byID     map[int64]int
	loaded   bool
	loadedAt time.Time
}

// New creates an empty catalog that fills itself through loader.
func New(loader Loader, logger zerolog.Logger) *Catalog {
	return &Catalog{
		loader:       loader,
		logger:       logger.With().Str("component", "catalog").Logger(),
		retryBackoff: initialRetryBackoff,
	}
}

// Resolve returns the first product whose barcode or slug equals code.
// A blank code resolves to nil without error.
func (c *Catalog) Resolve(code string) (*model.ProductBrief, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, model.ErrCatalogLoading
	}

	for i := range c.products {
		p := c.products[i]
		if (p.Barcode != "" && p.Barcode == code) || (p.Slug != "" && p.Slug == code) {
			return &p, nil
		}
	}

	c.logger.Debug().Str("code", code).Msg("no product matches scanned code")
	return nil, model.ErrProductNotFound
}

// ByID returns the product with the given id.
func (c *Catalog) ByID(id int64) (*model.ProductBrief, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, model.ErrCatalogLoading
	}

	i, ok := c.byID[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

// Loaded reports whether at least one snapshot has been installed.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Size returns the number of products in the current snapshot.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// LoadedAt returns when the current snapshot was installed.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Replace installs products as the current snapshot.
func (c *Catalog) Replace(products []model.ProductBrief) {
	snapshot := make([]model.ProductBrief, len(products))
	copy(snapshot, products)

	byID := make(map[int64]int, len(snapshot))
	for i, p := range snapshot {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}

	c.mu.Lock()
	c.products = snapshot
	c.byID = byID
	c.loaded = true
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

// Refresh reloads the snapshot. On failure the previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	start := time.Now()

	products, err := c.loader.Load(ctx)
	if err != nil {
		c.logger.Error().Err(err).Bool("loaded", c.Loaded()).Msg("failed to refresh catalog")
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}

	c.Replace(products)

	c.logger.Info().
		Int("products", len(products)).
		Dur("duration", time.Since(start)).
		Msg("catalog refreshed")

	return nil
}

// Run loads the catalog and keeps it fresh until ctx is cancelled. The first
// load is retried with a growing backoff, capped at interval, until it succeeds;
// after that the catalog is refreshed every interval. With interval <= 0 it only
// performs a single initial load.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		_ = c.Refresh(ctx)
		return
	}

	if !c.loadInitial(ctx, interval) {
		c.logger.Info().Msg("catalog refresher stopped")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("catalog refresher stopped")
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

// loadInitial retries Refresh until it succeeds. It returns false when ctx is
// cancelled first.
func (c *Catalog) loadInitial(ctx context.Context, interval time.Duration) bool {
	for attempt := 1; ; attempt++ {
		if err := c.Refresh(ctx); err == nil {
			return true
		}

		delay := min(time.Duration(attempt)*c.retryBackoff, maxRetryBackoff, interval)
		c.logger.Warn().
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("catalog not loaded yet")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
	}
}
