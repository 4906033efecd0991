package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/metrics"
)

// Provider is the upstream catalog source. FetchProducts must be idempotent
// and free of side effects; the cache may call it redundantly.
type Provider interface {
	FetchProducts(ctx context.Context) ([]RawProduct, error)
}

// SnapshotStore persists the last good snapshot across restarts.
type SnapshotStore interface {
	Save(snapshot *domain.Snapshot) error
	Latest() (*domain.Snapshot, error)
}

// Cache owns the current catalog snapshot. Refreshes are not serialized:
// concurrent misses may each fetch, and whichever finishes last wins. Readers
// always see a complete snapshot because the pointer is swapped atomically.
type Cache struct {
	provider Provider
	store    SnapshotStore
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	current atomic.Pointer[domain.Snapshot]
}

// Option customizes a Cache.
type Option func(*Cache)

// WithStore mirrors every refreshed snapshot into store.
func WithStore(store SnapshotStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(provider Provider, ttl time.Duration, logger *zap.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.Named("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a usable snapshot and never fails. A missing or expired
// snapshot triggers a fetch; if that fails the previous snapshot is served
// stale, or an empty one when nothing was ever loaded.
func (c *Cache) Get(ctx context.Context) *domain.Snapshot {
	snap := c.current.Load()
	if snap.Fresh(c.now()) {
		metrics.CatalogServed.WithLabelValues("fresh").Inc()
		return snap
	}

	refreshed, err := c.Refresh(ctx)
	if err == nil {
		metrics.CatalogServed.WithLabelValues("refreshed").Inc()
		return refreshed
	}

	if snap != nil {
		c.logger.Warn("catalog refresh failed, serving stale snapshot",
			zap.Time("fetched_at", snap.FetchedAt),
			zap.Int("products", snap.Len()),
			zap.Error(err))
		metrics.CatalogServed.WithLabelValues("stale").Inc()
		return snap
	}

	c.logger.Error("catalog refresh failed, serving empty snapshot", zap.Error(err))
	metrics.CatalogServed.WithLabelValues("empty").Inc()
	return domain.EmptySnapshot(c.ttl)
}

// Refresh fetches and publishes a new snapshot unconditionally.
func (c *Cache) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	raw, err := c.provider.FetchProducts(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("failure").Inc()
		return nil, err
	}

	products := make([]domain.Product, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		p, ok := FromRaw(r)
		if !ok {
			skipped++
			continue
		}
		products = append(products, p)
	}

	snap := domain.NewSnapshot(products, c.now(), c.ttl)
	c.current.Store(snap)

	metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	metrics.CatalogProducts.Set(float64(snap.Len()))
	c.logger.Info("catalog refreshed",
		zap.Int("products", snap.Len()),
		zap.Int("skipped", skipped),
		zap.Int("duplicates", len(products)-snap.Len()))

	if c.store != nil {
		if err := c.store.Save(snap); err != nil {
			c.logger.Warn("failed to persist catalog snapshot", zap.Error(err))
		}
	}
	return snap, nil
}

// Warm seeds the cache from the persisted snapshot, if any. The snapshot keeps
// its original fetch time, so it is refreshed on first use but still serves
// as the stale fallback while upstream is unreachable.
func (c *Cache) Warm(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	snap, err := c.store.Latest()
	if err != nil || snap == nil {
		return err
	}
	snap.TTL = c.ttl
	c.current.CompareAndSwap(nil, snap)
	c.logger.Info("catalog warmed from persisted snapshot",
		zap.Time("fetched_at", snap.FetchedAt),
		zap.Int("products", snap.Len()))
	return nil
}

// Current returns the published snapshot without refreshing; nil if none.
func (c *Cache) Current() *domain.Snapshot {
	return c.current.Load()
}

// TTL reports the configured snapshot lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
