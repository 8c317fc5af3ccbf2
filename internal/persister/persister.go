package persister

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tiffy-rewards-go/internal/metrics"
	"tiffy-rewards-go/internal/store"

	"go.uber.org/zap"
)

// Config contains configuration for Persister
type Config struct {
	Store    store.LedgerStore
	Interval time.Duration
}

// Persister flushes the ledger snapshot on a fixed interval, off the
// request path, and once more when stopped.
type Persister struct {
	store    store.LedgerStore
	interval time.Duration

	started  atomic.Bool
	stopOnce sync.Once

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

func New(cfg Config) *Persister {
	return &Persister{
		store:    cfg.Store,
		interval: cfg.Interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start launches the flush loop. Calling it more than once has no effect.
func (p *Persister) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go p.flushLoop(ctx)

	zap.L().Info("Ledger persister started", zap.Duration("interval", p.interval))
}

// Stop ends the flush loop and waits for the final flush to complete.
func (p *Persister) Stop() {
	if !p.started.Load() {
		return
	}

	p.stopOnce.Do(func() {
		zap.L().Info("Stopping ledger persister")
		close(p.stopChan)
	})
	<-p.doneChan
}

func (p *Persister) flushLoop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = p.Flush(ctx)
		case <-p.stopChan:
			_ = p.Flush(context.WithoutCancel(ctx))
			return
		case <-ctx.Done():
			_ = p.Flush(context.WithoutCancel(ctx))
			return
		}
	}
}

// Flush writes one snapshot now. Errors are logged and returned; the next
// tick simply tries again.
func (p *Persister) Flush(ctx context.Context) error {
	start := time.Now()
	err := p.store.Persist(ctx)
	duration := time.Since(start)
	metrics.RecordPersist(err, duration)

	if err != nil {
		zap.L().Error("Ledger flush failed", zap.Duration("duration", duration), zap.Error(err))
		return err
	}

	users, wallets, shares := p.store.Size()
	metrics.SetLedgerSize(users, wallets, shares)
	zap.L().Debug("Ledger flushed",
		zap.Duration("duration", duration),
		zap.Int("users", users),
		zap.Int("wallets", wallets),
		zap.Int("shares", shares))
	return nil
}
