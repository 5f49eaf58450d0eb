package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/metrics"
	"github.com/rickgao/nse-data/internal/model"
)

// pageSchemaVersion identifies the shape of cached pages. Bumped whenever a
// field is added to the listing; entries written under an older version are
// treated as misses and evicted. Version 2 added the symbol enrichment.
const pageSchemaVersion = 2

type pageEnvelope struct {
	Schema int             `json:"schema"`
	Page   model.OrderPage `json:"page"`
}

// OrderPageKey builds the cache key for one listing page.
func OrderPageKey(userID uuid.UUID, skip, limit int) string {
	return fmt.Sprintf("purchased_orders:%s:%d:%d", userID, skip, limit)
}

// UserPrefix is the key prefix shared by all of a user's cached pages.
func UserPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("purchased_orders:%s:", userID)
}

// Pages is the typed read-through layer over a Store.
type Pages struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewPages creates the page cache. ttl <= 0 falls back to 300s.
func NewPages(store Store, ttl time.Duration, logger *slog.Logger) *Pages {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &Pages{store: store, ttl: ttl, logger: logger}
}

// GetOrderPage returns a cached listing page. A corrupt or stale-schema
// entry is evicted and reported as a miss; that recovery never fails the
// read.
func (p *Pages) GetOrderPage(ctx context.Context, userID uuid.UUID, skip, limit int) (model.OrderPage, bool) {
	key := OrderPageKey(userID, skip, limit)

	raw, found, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache read failed", "key", key, "error", err)
		return model.OrderPage{}, false
	}
	if !found {
		metrics.CacheMisses.Inc()
		return model.OrderPage{}, false
	}

	env, err := decodePage(key, raw)
	if err != nil {
		// fault.CacheDecode: recovered locally, logged, entry evicted.
		p.logger.Warn("evicting undecodable cache entry", "key", key, "error", err)
		metrics.CacheEvictions.Inc()
		metrics.CacheMisses.Inc()
		if delErr := p.store.Delete(ctx, key); delErr != nil {
			p.logger.Warn("cache eviction failed", "key", key, "error", delErr)
		}
		return model.OrderPage{}, false
	}

	metrics.CacheHits.Inc()
	return env.Page, true
}

// PutOrderPage stores a listing page with the configured TTL. Failures are
// logged only; the caller already holds the fresh page.
func (p *Pages) PutOrderPage(ctx context.Context, userID uuid.UUID, skip, limit int, page model.OrderPage) {
	key := OrderPageKey(userID, skip, limit)

	raw, err := json.Marshal(pageEnvelope{Schema: pageSchemaVersion, Page: page})
	if err != nil {
		p.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := p.store.SetEx(ctx, key, raw, p.ttl); err != nil {
		p.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// InvalidateUser removes every cached page for userID, regardless of
// skip/limit.
func (p *Pages) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if err := p.store.DeleteByPrefix(ctx, UserPrefix(userID)); err != nil {
		return fmt.Errorf("invalidate cached pages for user %s: %w", userID, err)
	}
	return nil
}

func decodePage(key string, raw []byte) (pageEnvelope, error) {
	var env pageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pageEnvelope{}, fault.CacheDecode(key, err)
	}
	if env.Schema != pageSchemaVersion {
		return pageEnvelope{}, fault.CacheDecode(key,
			fmt.Errorf("schema version %d, want %d", env.Schema, pageSchemaVersion))
	}
	return env, nil
}
