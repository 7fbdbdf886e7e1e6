package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// purgeConcurrency bounds parallel document deletes during cascade purge
const purgeConcurrency = 4

// timelineEventRepository stores events in a single collection keyed by
// event ID (UUIDs are globally unique) with case_id as a query field.
// Lifecycle transitions run inside Firestore transactions so that
// concurrent trash/restore/delete on the same event are serialized
// across server processes.
type timelineEventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTimelineEventRepository(client *firestore.Client) *timelineEventRepository {
	return &timelineEventRepository{
		client: client,
	}
}

func (r *timelineEventRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_timeline_events"
	}
	return "timeline_events"
}

func (r *timelineEventRepository) doc(eventID types.EventID) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(eventID.String())
}

// getTx fetches and decodes an event inside a transaction, verifying it
// belongs to the expected case.
func (r *timelineEventRepository) getTx(tx *firestore.Transaction, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	docSnap, err := tx.Get(r.doc(eventID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
				goerr.V("case_id", caseID), goerr.V("event_id", eventID))
		}
		return nil, goerr.Wrap(err, "failed to get timeline event", goerr.V("event_id", eventID))
	}

	var ev model.TimelineEvent
	if err := docSnap.DataTo(&ev); err != nil {
		return nil, goerr.Wrap(err, "failed to decode timeline event", goerr.V("event_id", eventID))
	}
	if ev.CaseID != caseID {
		return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
			goerr.V("case_id", caseID), goerr.V("event_id", eventID))
	}

	return &ev, nil
}

func (r *timelineEventRepository) Create(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	now := time.Now().UTC()
	created := ev.Clone()
	created.State = types.EventStateActive
	created.TrashedAt = nil
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.doc(created.ID).Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create timeline event",
			goerr.V("case_id", created.CaseID), goerr.V("event_id", created.ID))
	}

	return created, nil
}

func (r *timelineEventRepository) Get(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	docSnap, err := r.doc(eventID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
				goerr.V("case_id", caseID), goerr.V("event_id", eventID))
		}
		return nil, goerr.Wrap(err, "failed to get timeline event", goerr.V("event_id", eventID))
	}

	var ev model.TimelineEvent
	if err := docSnap.DataTo(&ev); err != nil {
		return nil, goerr.Wrap(err, "failed to decode timeline event", goerr.V("event_id", eventID))
	}
	if ev.CaseID != caseID {
		return nil, goerr.Wrap(ErrNotFound, "timeline event not found",
			goerr.V("case_id", caseID), goerr.V("event_id", eventID))
	}

	return &ev, nil
}

func (r *timelineEventRepository) List(ctx context.Context, caseID types.CaseID, state types.EventState) ([]*model.TimelineEvent, error) {
	q := r.client.Collection(r.collection()).
		Where("case_id", "==", caseID.String())

	// Records written before the state field carry an empty state,
	// which reads as active
	if st := state.Normalize(); st == types.EventStateActive {
		q = q.Where("state", "in", []string{types.EventStateActive.String(), ""})
	} else {
		q = q.Where("state", "==", st.String())
	}

	iter := q.OrderBy("timestamp", firestore.Asc).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	events := make([]*model.TimelineEvent, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate timeline events", goerr.V("case_id", caseID))
		}

		var ev model.TimelineEvent
		if err := docSnap.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode timeline event", goerr.V("doc_id", docSnap.Ref.ID))
		}

		events = append(events, &ev)
	}

	return events, nil
}

func (r *timelineEventRepository) Update(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	updated := ev.Clone()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.getTx(tx, ev.CaseID, ev.ID)
		if err != nil {
			return err
		}

		// Lifecycle state is owned by Trash/Restore/Purge, not Update
		updated.State = existing.State
		updated.TrashedAt = existing.TrashedAt
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(r.doc(updated.ID), updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *timelineEventRepository) Trash(ctx context.Context, caseID types.CaseID, eventID types.EventID, now time.Time) (*model.TimelineEvent, bool, error) {
	var trashed *model.TimelineEvent
	var changed bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ev, err := r.getTx(tx, caseID, eventID)
		if err != nil {
			return err
		}

		changed = ev.Trash(now.UTC())
		trashed = ev
		if !changed {
			return nil
		}
		ev.UpdatedAt = time.Now().UTC()
		return tx.Set(r.doc(eventID), ev)
	})
	if err != nil {
		return nil, false, err
	}

	return trashed, changed, nil
}

func (r *timelineEventRepository) Restore(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	var restored *model.TimelineEvent
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ev, err := r.getTx(tx, caseID, eventID)
		if err != nil {
			return err
		}

		if err := ev.Restore(); err != nil {
			return err
		}
		ev.UpdatedAt = time.Now().UTC()
		restored = ev
		return tx.Set(r.doc(eventID), ev)
	})
	if err != nil {
		return nil, err
	}

	return restored, nil
}

func (r *timelineEventRepository) Purge(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	var purged *model.TimelineEvent
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ev, err := r.getTx(tx, caseID, eventID)
		if err != nil {
			return err
		}

		if err := ev.Purgeable(); err != nil {
			return err
		}
		purged = ev
		return tx.Delete(r.doc(eventID))
	})
	if err != nil {
		return nil, err
	}

	return purged, nil
}

func (r *timelineEventRepository) PurgeByCase(ctx context.Context, caseID types.CaseID) error {
	iter := r.client.Collection(r.collection()).
		Where("case_id", "==", caseID.String()).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate timeline events", goerr.V("case_id", caseID))
		}
		refs = append(refs, docSnap.Ref)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(purgeConcurrency)
	for _, ref := range refs {
		eg.Go(func() error {
			if _, err := ref.Delete(egCtx); err != nil {
				return goerr.Wrap(err, "failed to delete timeline event", goerr.V("doc_id", ref.ID))
			}
			return nil
		})
	}

	return eg.Wait()
}

func (r *timelineEventRepository) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) ([]*model.TimelineEvent, error) {
	iter := r.client.Collection(r.collection()).
		Where("state", "==", types.EventStateTrashed.String()).
		Where("trashed_at", "<", cutoff.UTC()).
		Documents(ctx)
	defer iter.Stop()

	var candidates []*model.TimelineEvent
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate trashed timeline events")
		}

		var ev model.TimelineEvent
		if err := docSnap.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode timeline event", goerr.V("doc_id", docSnap.Ref.ID))
		}
		candidates = append(candidates, &ev)
	}

	// Re-check state transactionally: an event may have been restored
	// between the query and the delete.
	var purged []*model.TimelineEvent
	for _, candidate := range candidates {
		ev, err := r.Purge(ctx, candidate.CaseID, candidate.ID)
		if err != nil {
			if goerr.HasTag(err, model.TagNotFound) || goerr.HasTag(err, model.TagInvalidState) {
				continue
			}
			return purged, err
		}
		purged = append(purged, ev)
	}

	return purged, nil
}
