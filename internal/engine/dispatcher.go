package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fastygo/storecore/internal/metrics"
	"github.com/fastygo/storecore/internal/resilience"
)

// Config bounds engine invocations.
type Config struct {
	// Timeout is the per-invocation deadline. Zero means 10s.
	Timeout time.Duration
	// MaxConcurrent caps invocations in flight across all engines. Zero means 8.
	MaxConcurrent int64
	Breaker       resilience.BreakerConfig
}

// Dispatcher invokes registered engines under a shared concurrency limit,
// a deadline and a per-engine circuit breaker.
type Dispatcher struct {
	registry *Registry
	sem      *semaphore.Weighted
	timeout  time.Duration
	breaker  resilience.BreakerConfig
	logger   *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[Document]
}

func NewDispatcher(registry *Registry, cfg Config, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.Breaker.IsSuccessful == nil {
		// caller cancellation says nothing about the engine
		cfg.Breaker.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, ErrCanceled)
		}
	}
	return &Dispatcher{
		registry: registry,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		timeout:  cfg.Timeout,
		breaker:  cfg.Breaker,
		logger:   logger.Named("engine"),
		breakers: make(map[string]*gobreaker.CircuitBreaker[Document]),
	}
}

// Invoke runs the named engine and parses its output. Every failure is an
// *Error.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args []string, payload []byte) (Document, error) {
	start := time.Now()
	doc, err := d.invoke(ctx, name, args, payload)

	outcome := "ok"
	if err != nil {
		outcome = err.Kind.String()
		d.logger.Warn("engine invocation failed",
			zap.String("engine", name),
			zap.String("kind", outcome),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}
	metrics.EngineDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.EngineInvocations.WithLabelValues(name, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Names lists the registered engines.
func (d *Dispatcher) Names() []string {
	return d.registry.Names()
}

func (d *Dispatcher) invoke(ctx context.Context, name string, args []string, payload []byte) (Document, *Error) {
	eng, ok := d.registry.Lookup(name)
	if !ok {
		return nil, &Error{Engine: name, Kind: KindNotFound, Err: fmt.Errorf("engine %q is not registered", name)}
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, classify(name, err)
	}
	defer d.sem.Release(1)
	metrics.EngineInFlight.Inc()
	defer metrics.EngineInFlight.Dec()

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	doc, err := d.breakerFor(name).Execute(func() (Document, error) {
		out, err := eng.Run(runCtx, args, payload)
		if err != nil {
			return nil, classify(name, err)
		}
		doc, err := ParseDocument(out)
		if err != nil {
			return nil, &Error{Engine: name, Kind: KindParse, Err: err}
		}
		return doc, nil
	})
	if err != nil {
		if resilience.IsRejection(err) {
			return nil, &Error{Engine: name, Kind: KindRejected, Err: err}
		}
		return nil, classify(name, err)
	}
	return doc, nil
}

func (d *Dispatcher) breakerFor(name string) *gobreaker.CircuitBreaker[Document] {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.breakers[name]
	if !ok {
		cb = resilience.NewBreaker[Document]("engine-"+name, d.breaker, d.logger)
		d.breakers[name] = cb
	}
	return cb
}
