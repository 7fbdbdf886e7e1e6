package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/model/auth"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// TimelineUseCase drives the timeline event lifecycle. Every
// successful mutation publishes exactly one notification on the
// owning case's channel.
type TimelineUseCase struct {
	uc *UseCases
}

// requireCase validates that the case exists before touching its timeline
func (x *TimelineUseCase) requireCase(ctx context.Context, caseID types.CaseID) error {
	_, err := x.uc.Case.GetCase(ctx, caseID)
	return err
}

// mapEventErr converts repository errors into use case sentinels while
// passing through invalid-state results and storage failures.
func mapEventErr(err error, caseID types.CaseID, eventID types.EventID) error {
	if goerr.HasTag(err, model.TagNotFound) {
		return goerr.Wrap(ErrEventNotFound, "timeline event not found",
			goerr.V(CaseIDKey, caseID), goerr.V(EventIDKey, eventID))
	}
	return err
}

// CreateEvent creates a new active timeline event. The timestamp
// defaults to submission time and the creator defaults to the
// authenticated identity.
func (x *TimelineUseCase) CreateEvent(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, ev.CaseID); err != nil {
		return nil, err
	}

	ev = ev.Clone()
	if ev.ID == "" {
		ev.ID = types.NewEventID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = x.uc.now()
	}
	if ev.Creator == "" {
		ev.Creator = auth.IdentityFromContext(ctx).Sub
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	created, err := x.uc.repo.TimelineEvent().Create(ctx, ev)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create timeline event",
			goerr.V(CaseIDKey, ev.CaseID), goerr.V(EventIDKey, ev.ID))
	}

	x.uc.publish(ctx, model.NewEventNotification(types.NotificationEventCreated, created))

	return created, nil
}

// UpdateEvent updates an event's fields. Editing is allowed while
// active or trashed, so corrections can be queued before a restore.
func (x *TimelineUseCase) UpdateEvent(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, ev.CaseID); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	updated, err := x.uc.repo.TimelineEvent().Update(ctx, ev)
	if err != nil {
		return nil, mapEventErr(err, ev.CaseID, ev.ID)
	}

	x.uc.publish(ctx, model.NewEventNotification(types.NotificationEventUpdated, updated))

	return updated, nil
}

// TrashEvent soft-deletes an event. Trashing an already trashed event
// is a no-op success and publishes nothing: only actual transitions
// are announced.
func (x *TimelineUseCase) TrashEvent(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, caseID); err != nil {
		return nil, err
	}

	trashed, changed, err := x.uc.repo.TimelineEvent().Trash(ctx, caseID, eventID, x.uc.now())
	if err != nil {
		return nil, mapEventErr(err, caseID, eventID)
	}

	if changed {
		x.uc.publish(ctx, model.NewEventNotification(types.NotificationEventTrashed, trashed))
	}

	return trashed, nil
}

// RestoreEvent moves a trashed event back to active. Restoring a
// non-trashed event is an invalid-state error, not a no-op: the caller
// asked for a transition that cannot happen and should know.
func (x *TimelineUseCase) RestoreEvent(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, caseID); err != nil {
		return nil, err
	}

	restored, err := x.uc.repo.TimelineEvent().Restore(ctx, caseID, eventID)
	if err != nil {
		return nil, mapEventErr(err, caseID, eventID)
	}

	x.uc.publish(ctx, model.NewEventNotification(types.NotificationEventRestored, restored))

	return restored, nil
}

// DeleteEvent purges a trashed event permanently. Deleting an active
// event fails with an invalid-state result; trash-then-delete is the
// only hard delete path.
func (x *TimelineUseCase) DeleteEvent(ctx context.Context, caseID types.CaseID, eventID types.EventID) error {
	if err := x.requireCase(ctx, caseID); err != nil {
		return err
	}

	purged, err := x.uc.repo.TimelineEvent().Purge(ctx, caseID, eventID)
	if err != nil {
		return mapEventErr(err, caseID, eventID)
	}

	x.uc.publish(ctx, model.NewEventNotification(types.NotificationEventPurged, purged))

	return nil
}

// GetEvent retrieves an event regardless of active/trashed state
func (x *TimelineUseCase) GetEvent(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, caseID); err != nil {
		return nil, err
	}

	ev, err := x.uc.repo.TimelineEvent().Get(ctx, caseID, eventID)
	if err != nil {
		return nil, mapEventErr(err, caseID, eventID)
	}

	return ev, nil
}

// ListEvents returns the case's active events ordered by timestamp,
// ties broken by ID
func (x *TimelineUseCase) ListEvents(ctx context.Context, caseID types.CaseID) ([]*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, caseID); err != nil {
		return nil, err
	}

	events, err := x.uc.repo.TimelineEvent().List(ctx, caseID, types.EventStateActive)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list timeline events", goerr.V(CaseIDKey, caseID))
	}

	return events, nil
}

// ListTrashedEvents returns the case's trashed events ordered by
// timestamp, ties broken by ID
func (x *TimelineUseCase) ListTrashedEvents(ctx context.Context, caseID types.CaseID) ([]*model.TimelineEvent, error) {
	if err := x.requireCase(ctx, caseID); err != nil {
		return nil, err
	}

	events, err := x.uc.repo.TimelineEvent().List(ctx, caseID, types.EventStateTrashed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list trashed timeline events", goerr.V(CaseIDKey, caseID))
	}

	return events, nil
}
