package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher re-fetches the catalog on a schedule so request paths rarely pay
// for a cold refresh. It does not replace the on-demand refresh in Get.
type Refresher struct {
	cache    *Cache
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewRefresher(cache *Cache, interval, timeout time.Duration, logger *zap.Logger) (*Refresher, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("refresh interval must be at least one second, got %s", interval)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		cache:    cache,
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		timeout:  timeout,
		logger:   logger.Named("catalog_refresher"),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, err
	}
	return r, nil
}

// Start launches the cron scheduler.
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("catalog refresher started", zap.Duration("interval", r.interval))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("catalog refresher stopped")
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.cache.Refresh(ctx); err != nil {
		r.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
	}
}
