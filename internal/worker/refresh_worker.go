package worker

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/notify"
	"taskManager/internal/viewmodel"

	"go.uber.org/zap"
)

type TaskSource interface {
	Refresh(ctx context.Context) ([]viewmodel.Task, error)
	Viewer() identity.Viewer
	Names() identity.Names
}

type Deduplicator interface {
	Evaluate(ctx context.Context, tasks []viewmodel.Task, viewer identity.Viewer, names identity.Names) ([]notify.Notification, error)
	Prune(ctx context.Context, tasks []viewmodel.Task, viewer identity.Viewer) (int64, error)
}

// Pass summarizes one refresh.
type Pass struct {
	Tasks   int
	Emitted []notify.Notification
	Pruned  int64
}

// RefreshWorker periodically refetches the viewer's tasks and turns changes
// into local notifications. It lives until the context passed to Start ends.
type RefreshWorker struct {
	source   TaskSource
	dedup    Deduplicator
	interval time.Duration
	onPass   func(Pass)
}

func NewRefreshWorker(source TaskSource, dedup Deduplicator, interval *time.Duration, onPass func(Pass)) *RefreshWorker {
	intervalToSet := 30 * time.Second
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &RefreshWorker{
		source:   source,
		dedup:    dedup,
		interval: intervalToSet,
		onPass:   onPass,
	}
}

// Start runs one pass right away and then one per interval. Failed passes are
// logged and retried on the next tick.
func (w *RefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			logger.Info("Worker: refresh stopping")
			return
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context) {
	pass, err := w.Check(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Worker: refresh failed", zap.Error(err))
		}
		return
	}
	if w.onPass != nil {
		w.onPass(pass)
	}
}

// Check refetches, emits new notifications and prunes markers of vanished tasks.
func (w *RefreshWorker) Check(ctx context.Context) (Pass, error) {
	start := time.Now()
	viewer := w.source.Viewer()

	tasks, err := w.source.Refresh(ctx)
	if err != nil {
		return Pass{}, fmt.Errorf("refreshing tasks: %w", err)
	}

	emitted, err := w.dedup.Evaluate(ctx, tasks, viewer, w.source.Names())
	if err != nil {
		return Pass{}, fmt.Errorf("evaluating notifications: %w", err)
	}

	pruned, err := w.dedup.Prune(ctx, tasks, viewer)
	if err != nil {
		return Pass{}, fmt.Errorf("pruning markers: %w", err)
	}

	logger.Info("Worker: refresh finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("tasks", len(tasks)),
		zap.Int("emitted", len(emitted)),
		zap.Int64("pruned", pruned))

	return Pass{Tasks: len(tasks), Emitted: emitted, Pruned: pruned}, nil
}
