package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQueue struct {
	calls atomic.Int64
}

func (q *countingQueue) Sweep(ctx context.Context) (int, int, error) {
	q.calls.Add(1)
	return 1, 2, nil
}

type countingReaper struct {
	calls atomic.Int64
}

func (r *countingReaper) ReleaseExpired(ctx context.Context) (int, error) {
	r.calls.Add(1)
	return 1, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueSweeperRunsAndStops(t *testing.T) {
	svc := &countingQueue{}
	w := NewQueueSweeper(svc, 10*time.Millisecond, discardLogger())

	require.NoError(t, w.Start(context.Background()))

	// Starting twice is rejected.
	assert.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, svc.calls.Load())

	// Stopping twice is a no-op.
	w.Stop()
}

func TestQueueSweeperStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &countingQueue{}
	w := NewQueueSweeper(svc, 10*time.Millisecond, discardLogger())
	require.NoError(t, w.Start(ctx))

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, svc.calls.Load())
}

func TestReservationReaperRunsAndStops(t *testing.T) {
	svc := &countingReaper{}
	w := NewReservationReaper(svc, 10*time.Millisecond, discardLogger())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, svc.calls.Load())

	w.Stop()
}
