package model

import (
	"time"

	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// Notification describes a change to a case or one of its timeline
// events. It carries the changed entity's snapshot so subscribers can
// update their view without a follow-up fetch. Notifications are
// transient: never persisted and never replayed to late joiners.
type Notification struct {
	CaseID     types.CaseID           `json:"case_id"`
	Kind       types.NotificationKind `json:"kind"`
	Event      *TimelineEvent         `json:"event,omitempty"`
	Case       *Case                  `json:"case,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewEventNotification builds a notification for a timeline event change
func NewEventNotification(kind types.NotificationKind, ev *TimelineEvent) *Notification {
	return &Notification{
		CaseID:     ev.CaseID,
		Kind:       kind,
		Event:      ev,
		OccurredAt: time.Now().UTC(),
	}
}

// NewCaseNotification builds a notification for a case-level change
func NewCaseNotification(kind types.NotificationKind, c *Case) *Notification {
	return &Notification{
		CaseID:     c.ID,
		Kind:       kind,
		Case:       c,
		OccurredAt: time.Now().UTC(),
	}
}
