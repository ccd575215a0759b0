// Package worker hosts background loops that run alongside the API server.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/service"
)

// SweepWorker runs the promotion sweep on a fixed interval.
type SweepWorker struct {
	promotions *service.PromotionService
	interval   time.Duration
	logger     *zap.Logger

	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewSweepWorker constructs a worker. A non-positive interval disables the
// loop; Start then does nothing.
func NewSweepWorker(promotions *service.PromotionService, interval time.Duration, logger *zap.Logger) *SweepWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepWorker{
		promotions: promotions,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs after one interval,
// not immediately, so startup is not serialized behind a full pass.
func (w *SweepWorker) Start() {
	if w.interval <= 0 {
		w.logger.Warn("promotion sweeps disabled, no positive interval configured")
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
	w.logger.Info("promotion sweep worker started", zap.Duration("interval", w.interval))
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (w *SweepWorker) Stop() {
	if !w.started {
		return
	}
	close(w.stop)
	w.wg.Wait()
	w.logger.Info("promotion sweep worker stopped")
}

func (w *SweepWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.interval)
			if _, err := w.promotions.Sweep(ctx); err != nil {
				w.logger.Error("promotion sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}
