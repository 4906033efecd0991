package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
)

type fakeProvider struct {
	mu       sync.Mutex
	products []RawProduct
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeProvider) FetchProducts(ctx context.Context) ([]RawProduct, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]RawProduct(nil), f.products...), nil
}

func (f *fakeProvider) set(products []RawProduct, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
	f.err = err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryStore struct {
	saved *domain.Snapshot
	err   error
}

func (m *memoryStore) Save(s *domain.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = s
	return nil
}

func (m *memoryStore) Latest() (*domain.Snapshot, error) { return m.saved, m.err }

func raw(ids ...int64) []RawProduct {
	out := make([]RawProduct, len(ids))
	for i, id := range ids {
		out[i] = RawProduct{ID: int64p(id), Title: "p", Category: "misc"}
	}
	return out
}

func TestGetFetchesOnceWithinTTL(t *testing.T) {
	provider := &fakeProvider{products: raw(1, 2, 3)}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	cache := New(provider, time.Hour, nil, WithClock(clk.Now))

	first := cache.Get(context.Background())
	clk.Advance(59 * time.Minute)
	second := cache.Get(context.Background())

	assert.Equal(t, int32(1), provider.calls.Load())
	assert.Same(t, first, second)
	assert.Equal(t, []domain.ProductID{1, 2, 3}, second.IDs())
}

func TestGetRefreshesAtTTL(t *testing.T) {
	provider := &fakeProvider{products: raw(1)}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	cache := New(provider, time.Hour, nil, WithClock(clk.Now))

	cache.Get(context.Background())
	provider.set(raw(1, 2), nil)
	clk.Advance(time.Hour)

	snap := cache.Get(context.Background())
	assert.Equal(t, int32(2), provider.calls.Load())
	assert.Equal(t, 2, snap.Len())
}

func TestGetServesStaleOnUpstreamFailure(t *testing.T) {
	provider := &fakeProvider{products: raw(4, 5)}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	cache := New(provider, time.Minute, nil, WithClock(clk.Now))

	original := cache.Get(context.Background())
	provider.set(nil, errors.New("upstream down"))
	clk.Advance(2 * time.Minute)

	snap := cache.Get(context.Background())
	assert.Same(t, original, snap)
	assert.Equal(t, []domain.ProductID{4, 5}, snap.IDs())
}

func TestGetServesEmptyWhenNothingLoaded(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	cache := New(provider, time.Hour, nil)

	snap := cache.Get(context.Background())
	require.NotNil(t, snap)
	assert.Zero(t, snap.Len())
	assert.Nil(t, cache.Current())

	// the empty fallback is not cached; the next read retries
	provider.set(raw(9), nil)
	snap = cache.Get(context.Background())
	assert.Equal(t, []domain.ProductID{9}, snap.IDs())
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestRefreshDropsDuplicateAndIDlessRecords(t *testing.T) {
	records := append(raw(1, 2, 1), RawProduct{Title: "no id"})
	cache := New(&fakeProvider{products: records}, time.Hour, nil)

	snap, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductID{1, 2}, snap.IDs())
}

func TestConcurrentColdReadsFetchAtMostTwice(t *testing.T) {
	provider := &fakeProvider{products: raw(1, 2), delay: 20 * time.Millisecond}
	cache := New(provider, time.Hour, nil)

	var wg sync.WaitGroup
	results := make([]*domain.Snapshot, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(context.Background())
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, provider.calls.Load(), int32(2))
	for _, snap := range results {
		require.NotNil(t, snap)
		assert.Equal(t, []domain.ProductID{1, 2}, snap.IDs())
	}
}

func TestRefreshPersistsAndWarmRestores(t *testing.T) {
	store := &memoryStore{}
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	first := New(&fakeProvider{products: raw(3)}, time.Hour, nil, WithStore(store), WithClock(clk.Now))
	_, err := first.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, store.saved)

	clk.Advance(2 * time.Hour)
	down := &fakeProvider{err: errors.New("upstream down")}
	restarted := New(down, time.Hour, nil, WithStore(store), WithClock(clk.Now))
	require.NoError(t, restarted.Warm(context.Background()))

	snap := restarted.Get(context.Background())
	assert.Equal(t, int32(1), down.calls.Load(), "warmed snapshot is stale and must trigger a refresh")
	assert.Equal(t, []domain.ProductID{3}, snap.IDs())
}

func TestRefreshSurvivesStoreFailure(t *testing.T) {
	cache := New(&fakeProvider{products: raw(1)}, time.Hour, nil, WithStore(&memoryStore{err: errors.New("disk full")}))

	snap, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
}

func TestRefresherTick(t *testing.T) {
	provider := &fakeProvider{products: raw(1)}
	cache := New(provider, time.Hour, nil)
	r, err := NewRefresher(cache, time.Minute, time.Second, nil)
	require.NoError(t, err)

	r.tick()
	assert.Equal(t, int32(1), provider.calls.Load())
	assert.NotNil(t, cache.Current())

	_, err = NewRefresher(cache, 0, 0, nil)
	assert.Error(t, err)
}
