package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager runs long-lived components (HTTP server, catalog refresher,
// health monitor) and stops them in reverse registration order.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook

	failOnce sync.Once
	failed   chan struct{}
	failErr  error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
		failed:  make(chan struct{}),
	}
}

// Register adds a shutdown hook. Hooks are executed in reverse order.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Go runs a blocking component in the background. A non-nil return stops
// Run; stop is registered as its shutdown hook.
func (m *Manager) Go(name string, run func() error, stop ShutdownFunc) {
	m.Register(name, stop)
	go func() {
		if err := run(); err != nil {
			m.logger.Error("component exited", zap.String("component", name), zap.Error(err))
			m.failOnce.Do(func() {
				m.failErr = err
				close(m.failed)
			})
		}
	}()
}

// Run blocks until ctx is done, SIGINT/SIGTERM arrives or a component
// started with Go fails, then shuts everything down. The returned error
// joins the component failure with any hook errors.
func (m *Manager) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	defer stop()

	var cause error
	select {
	case <-sigCtx.Done():
		m.logger.Info("shutdown requested")
	case <-m.failed:
		cause = m.failErr
	}
	return errors.Join(cause, m.Shutdown(context.Background()))
}

// Shutdown executes all registered hooks, respecting the configured timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	hooks := m.hooks
	m.hooks = nil
	m.mu.Unlock()

	var result error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name))
	}
	return result
}
