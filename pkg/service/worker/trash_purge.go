package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/utils/async"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
)

// TrashPurgeWorker permanently removes timeline events that have been
// sitting in the trash longer than the retention period.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type TrashPurgeWorker struct {
	repo      interfaces.Repository
	bus       *pubsub.Bus
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewTrashPurgeWorker creates a worker that purges expired trashed events
func NewTrashPurgeWorker(repo interfaces.Repository, bus *pubsub.Bus, retention, interval time.Duration) *TrashPurgeWorker {
	return &TrashPurgeWorker{
		repo:      repo,
		bus:       bus,
		retention: retention,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background purge loop. The loop runs detached from
// the caller's context lifetime; use Stop for shutdown. Does not block
// server startup.
func (w *TrashPurgeWorker) Start(ctx context.Context) error {
	logging.Default().Info("Trash purge worker starting",
		"retention", w.retention.String(),
		"interval", w.interval.String())

	async.Dispatch(ctx, func(ctx context.Context) error {
		w.run(ctx)
		return nil
	})

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *TrashPurgeWorker) Stop() {
	logging.Default().Info("Trash purge worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Trash purge worker stopped")
}

func (w *TrashPurgeWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.purge(ctx); err != nil {
		logging.Default().Error("Initial trash purge failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.purge(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Trash purge failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Trash purge worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Trash purge worker context cancelled")
			return
		}
	}
}

// purge performs a single purge cycle and announces each removed event
// on its case channel.
func (w *TrashPurgeWorker) purge(ctx context.Context) error {
	startTime := w.now()
	cutoff := startTime.Add(-w.retention)

	purged, err := w.repo.TimelineEvent().PurgeTrashedBefore(ctx, cutoff)
	if err != nil {
		return goerr.Wrap(err, "failed to purge trashed events", goerr.V("cutoff", cutoff))
	}

	if w.bus != nil {
		for _, ev := range purged {
			n := model.NewEventNotification(types.NotificationEventPurged, ev)
			if err := w.bus.Publish(ctx, n); err != nil {
				logging.Default().Error("Failed to publish purge notification",
					"case_id", ev.CaseID,
					"event_id", ev.ID,
					"error", err.Error())
			}
		}
	}

	if len(purged) > 0 {
		logging.Default().Info("Trash purge completed",
			"count", len(purged),
			"duration", time.Since(startTime).String())
	}

	return nil
}
