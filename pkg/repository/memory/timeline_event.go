package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// timelineEventRepository keeps events per case. All lifecycle
// transitions run under the single write lock, which serializes
// concurrent trash/restore/delete on the same event.
type timelineEventRepository struct {
	mu     sync.RWMutex
	events map[types.CaseID]map[types.EventID]*model.TimelineEvent
}

func newTimelineEventRepository() *timelineEventRepository {
	return &timelineEventRepository{
		events: make(map[types.CaseID]map[types.EventID]*model.TimelineEvent),
	}
}

func (r *timelineEventRepository) ensureCase(caseID types.CaseID) {
	if _, exists := r.events[caseID]; !exists {
		r.events[caseID] = make(map[types.EventID]*model.TimelineEvent)
	}
}

func (r *timelineEventRepository) find(caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	events, exists := r.events[caseID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
			goerr.V("case_id", caseID), goerr.V("event_id", eventID))
	}
	ev, exists := events[eventID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
			goerr.V("case_id", caseID), goerr.V("event_id", eventID))
	}
	return ev, nil
}

func (r *timelineEventRepository) Create(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureCase(ev.CaseID)

	now := time.Now().UTC()
	created := ev.Clone()
	created.State = types.EventStateActive
	created.TrashedAt = nil
	created.CreatedAt = now
	created.UpdatedAt = now

	r.events[ev.CaseID][created.ID] = created
	return created.Clone(), nil
}

func (r *timelineEventRepository) Get(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, err := r.find(caseID, eventID)
	if err != nil {
		return nil, err
	}
	return ev.Clone(), nil
}

func (r *timelineEventRepository) List(ctx context.Context, caseID types.CaseID, state types.EventState) ([]*model.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.TimelineEvent, 0)
	for _, ev := range r.events[caseID] {
		if ev.State.Normalize() != state.Normalize() {
			continue
		}
		events = append(events, ev.Clone())
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})

	return events, nil
}

func (r *timelineEventRepository) Update(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.find(ev.CaseID, ev.ID)
	if err != nil {
		return nil, err
	}

	updated := ev.Clone()
	// Lifecycle state is owned by Trash/Restore/Purge, not Update
	updated.State = existing.State
	updated.TrashedAt = existing.TrashedAt
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.events[ev.CaseID][updated.ID] = updated
	return updated.Clone(), nil
}

func (r *timelineEventRepository) Trash(ctx context.Context, caseID types.CaseID, eventID types.EventID, now time.Time) (*model.TimelineEvent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, err := r.find(caseID, eventID)
	if err != nil {
		return nil, false, err
	}

	changed := ev.Trash(now.UTC())
	if changed {
		ev.UpdatedAt = time.Now().UTC()
	}
	return ev.Clone(), changed, nil
}

func (r *timelineEventRepository) Restore(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, err := r.find(caseID, eventID)
	if err != nil {
		return nil, err
	}

	if err := ev.Restore(); err != nil {
		return nil, err
	}
	ev.UpdatedAt = time.Now().UTC()
	return ev.Clone(), nil
}

func (r *timelineEventRepository) Purge(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, err := r.find(caseID, eventID)
	if err != nil {
		return nil, err
	}

	if err := ev.Purgeable(); err != nil {
		return nil, err
	}

	delete(r.events[caseID], eventID)
	return ev.Clone(), nil
}

func (r *timelineEventRepository) PurgeByCase(ctx context.Context, caseID types.CaseID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, caseID)
	return nil
}

func (r *timelineEventRepository) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) ([]*model.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged []*model.TimelineEvent
	for caseID, events := range r.events {
		for eventID, ev := range events {
			if !ev.IsTrashed() || ev.TrashedAt == nil || !ev.TrashedAt.Before(cutoff) {
				continue
			}
			purged = append(purged, ev.Clone())
			delete(r.events[caseID], eventID)
		}
	}

	sort.Slice(purged, func(i, j int) bool {
		return purged[i].Before(purged[j])
	})

	return purged, nil
}
