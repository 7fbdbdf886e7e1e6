package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// TimelineEvent is a discrete, timestamped record within a case's
// narrative. Its lifecycle is Active -> Trashed -> (restored to Active,
// or purged out of storage). The state tag is stored explicitly;
// TrashedAt is kept alongside for audit and retention-based purging.
type TimelineEvent struct {
	ID          types.EventID    `json:"id" firestore:"id"`
	CaseID      types.CaseID     `json:"case_id" firestore:"case_id"`
	Timestamp   time.Time        `json:"timestamp" firestore:"timestamp"`
	Title       string           `json:"title" firestore:"title"`
	Description string           `json:"description" firestore:"description"`
	Creator     string           `json:"creator" firestore:"creator"`
	Category    string           `json:"category" firestore:"category"`
	State       types.EventState `json:"state" firestore:"state"`
	TrashedAt   *time.Time       `json:"trashed_at,omitempty" firestore:"trashed_at"`
	CreatedAt   time.Time        `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" firestore:"updated_at"`
}

// Validate checks required fields of the event
func (x *TimelineEvent) Validate() error {
	if x.Title == "" {
		return goerr.New("event title is required", goerr.T(TagValidation))
	}
	if x.Creator == "" {
		return goerr.New("event creator is required", goerr.T(TagValidation))
	}
	if x.Category == "" {
		return goerr.New("event category is required", goerr.T(TagValidation))
	}
	return nil
}

// IsTrashed reports whether the event is in the trashed state
func (x *TimelineEvent) IsTrashed() bool {
	return x.State.Normalize() == types.EventStateTrashed
}

// Trash moves the event to the trashed state. Trashing an already
// trashed event is a no-op; the return value reports whether the state
// actually changed.
func (x *TimelineEvent) Trash(now time.Time) bool {
	if x.IsTrashed() {
		return false
	}
	x.State = types.EventStateTrashed
	x.TrashedAt = &now
	return true
}

// Restore moves a trashed event back to the active state. Only trashed
// events can be restored.
func (x *TimelineEvent) Restore() error {
	if !x.IsTrashed() {
		return goerr.New("timeline event is not trashed",
			goerr.T(TagInvalidState),
			goerr.V("event_id", x.ID),
			goerr.V("state", x.State))
	}
	x.State = types.EventStateActive
	x.TrashedAt = nil
	return nil
}

// Purgeable reports an error unless the event can be hard-deleted.
// Purge is legal only from the trashed state; there is no direct
// Active -> Purged path.
func (x *TimelineEvent) Purgeable() error {
	if !x.IsTrashed() {
		return goerr.New("timeline event must be trashed before delete",
			goerr.T(TagInvalidState),
			goerr.V("event_id", x.ID),
			goerr.V("state", x.State))
	}
	return nil
}

// Clone returns a deep copy of the event
func (x *TimelineEvent) Clone() *TimelineEvent {
	copied := *x
	if x.TrashedAt != nil {
		t := *x.TrashedAt
		copied.TrashedAt = &t
	}
	return &copied
}

// Before orders events by timestamp, with ties broken by identifier so
// listings are deterministic.
func (x *TimelineEvent) Before(other *TimelineEvent) bool {
	if !x.Timestamp.Equal(other.Timestamp) {
		return x.Timestamp.Before(other.Timestamp)
	}
	return x.ID < other.ID
}
