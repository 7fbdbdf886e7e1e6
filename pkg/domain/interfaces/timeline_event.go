package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// TimelineEventRepository defines the interface for TimelineEvent data
// access. Lifecycle transitions (Trash, Restore, Purge) are implemented
// by the repository so that concurrent transitions on the same event
// are serialized by the backend (a single lock in memory, a document
// transaction in Firestore) and never observe torn state.
type TimelineEventRepository interface {
	// Create stores a new event in the active state
	Create(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error)

	// Get retrieves an event regardless of active/trashed state.
	// Purged events yield a not-found error.
	Get(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error)

	// List retrieves events of the given state, ordered by timestamp
	// with ties broken by ID. Purged events never appear.
	List(ctx context.Context, caseID types.CaseID, state types.EventState) ([]*model.TimelineEvent, error)

	// Update updates an event's fields. Allowed in active and trashed
	// states; the lifecycle state is not changed by Update.
	Update(ctx context.Context, ev *model.TimelineEvent) (*model.TimelineEvent, error)

	// Trash moves an event to the trashed state. Trashing an already
	// trashed event is a no-op success; changed reports whether the
	// state transitioned.
	Trash(ctx context.Context, caseID types.CaseID, eventID types.EventID, now time.Time) (ev *model.TimelineEvent, changed bool, err error)

	// Restore moves a trashed event back to active. Restoring a
	// non-trashed event fails with an invalid-state error.
	Restore(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error)

	// Purge permanently removes a trashed event and returns its last
	// snapshot. Purging an active event fails with an invalid-state
	// error: trash-then-delete is the only hard delete path.
	Purge(ctx context.Context, caseID types.CaseID, eventID types.EventID) (*model.TimelineEvent, error)

	// PurgeByCase removes all events of a case regardless of state.
	// Used only for case deletion cascade.
	PurgeByCase(ctx context.Context, caseID types.CaseID) error

	// PurgeTrashedBefore removes events trashed before the cutoff and
	// returns their last snapshots. Used by the retention worker.
	PurgeTrashedBefore(ctx context.Context, cutoff time.Time) ([]*model.TimelineEvent, error)
}
