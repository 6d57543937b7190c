package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// QueueSweeper is the only component that activates waiting-room
// tokens. It runs one sweep per tick; sweeps never overlap because the
// loop runs them synchronously.
type QueueSweeper struct {
	svc      QueueService
	interval time.Duration
	log      *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

type QueueService interface {
	Sweep(ctx context.Context) (expired, activated int, err error)
}

func NewQueueSweeper(svc QueueService, interval time.Duration, log *slog.Logger) *QueueSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &QueueSweeper{
		svc:      svc,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

func (w *QueueSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("queue sweeper already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx)

	return nil
}

func (w *QueueSweeper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
}

func (w *QueueSweeper) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *QueueSweeper) sweep(ctx context.Context) {
	expired, activated, err := w.svc.Sweep(ctx)
	if err != nil {
		w.log.Error("queue sweep failed", "error", err)
		return
	}

	if expired > 0 || activated > 0 {
		w.log.Info("queue sweep", "expired", expired, "activated", activated)
	}
}
