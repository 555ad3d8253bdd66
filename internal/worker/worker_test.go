package worker

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int64
}

func (c *countingSweeper) Sweep(now time.Time) int {
	c.calls.Add(1)
	return 1
}

func TestWorker_SweepsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	w := New(sweeper, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w.Start()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	stopped := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load())
	assert.Equal(t, 10*time.Millisecond, w.GetInterval())
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := New(&countingSweeper{}, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotPanics(t, w.Stop)
}
