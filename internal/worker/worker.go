package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper определяет интерфейс хранилища, из которого периодически удаляются устаревшие записи.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Worker реализует фонового воркера, который по расписанию чистит простаивающие сессии.
type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     sync.WaitGroup
}

// New создает нового воркера очистки.
// Принимает хранилище, интервал запуска и логгер.
func New(sweeper Sweeper, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		sweeper:  sweeper,
		interval: interval,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done.Add(1)
	go w.run()
}

// Stop останавливает воркер и дожидается выхода из цикла.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.done.Wait()
}

// run выполняет очистку по тикеру до отмены контекста воркера.
func (w *Worker) run() {
	defer w.done.Done()
	w.log.Info("Session sweeper started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			w.sweep(now)
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// sweep удаляет устаревшие сессии и логирует их количество.
func (w *Worker) sweep(now time.Time) {
	start := time.Now()
	removed := w.sweeper.Sweep(now)
	if removed == 0 {
		return
	}
	w.log.Info("Sweep cycle completed",
		slog.Int("removed", removed),
		slog.Duration("duration", time.Since(start)),
	)
}

// GetInterval возвращает интервал очистки.
func (w *Worker) GetInterval() time.Duration { return w.interval }
