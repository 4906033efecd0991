package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SnapshotCounter interface {
	Size() (int, error)
}

type CatalogSource interface {
	Current() *domain.Snapshot
}

// Deps lists what the monitor probes. Nil members are reported as down,
// except Redis which is optional.
type Deps struct {
	Postgres  Pinger
	Redis     *redislib.Client
	Snapshots SnapshotCounter
	Catalog   CatalogSource
	Engines   func() []string
}

type Monitor struct {
	deps Deps

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(deps Deps, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		deps:     deps,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and publishes the result.
func (m *Monitor) Refresh() Status {
	snapOK, snapCount := m.checkSnapshots()
	status := Status{
		PostgreSQL:    m.checkPostgres(),
		Redis:         m.checkRedis(),
		RedisEnabled:  m.deps.Redis != nil,
		Snapshots:     snapOK,
		SnapshotCount: snapCount,
		Catalog:       m.checkCatalog(),
		Engines:       []string{},
		LastCheck:     m.now(),
	}
	if m.deps.Engines != nil {
		status.Engines = m.deps.Engines()
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) checkPostgres() bool {
	if m.deps.Postgres == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.deps.Postgres.Ping(ctx); err != nil {
		m.logger.Warn("postgres ping failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkRedis() bool {
	if m.deps.Redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.deps.Redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkSnapshots() (bool, int) {
	if m.deps.Snapshots == nil {
		return false, 0
	}
	size, err := m.deps.Snapshots.Size()
	if err != nil {
		m.logger.Warn("snapshot store check failed", zap.Error(err))
		return false, size
	}
	return true, size
}

func (m *Monitor) checkCatalog() CatalogStatus {
	if m.deps.Catalog == nil {
		return CatalogStatus{}
	}
	snap := m.deps.Catalog.Current()
	if snap == nil {
		return CatalogStatus{}
	}
	return CatalogStatus{
		Products:  snap.Len(),
		FetchedAt: snap.FetchedAt,
		Fresh:     snap.Fresh(m.now()),
	}
}
