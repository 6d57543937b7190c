package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReservationReaper releases seat holds whose TTL elapsed without a
// payment.
type ReservationReaper struct {
	svc      ReservationService
	interval time.Duration
	log      *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

type ReservationService interface {
	ReleaseExpired(ctx context.Context) (int, error)
}

func NewReservationReaper(svc ReservationService, interval time.Duration, log *slog.Logger) *ReservationReaper {
	if interval <= 0 {
		interval = time.Minute
	}

	return &ReservationReaper{
		svc:      svc,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

func (w *ReservationReaper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reservation reaper already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx)

	return nil
}

func (w *ReservationReaper) Stop() {
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

func (w *ReservationReaper) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.reap(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *ReservationReaper) reap(ctx context.Context) {
	released, err := w.svc.ReleaseExpired(ctx)
	if err != nil {
		w.log.Error("reservation reap failed", "error", err)
		return
	}

	if released > 0 {
		w.log.Info("released expired holds", "count", released)
	}
}
