package types

import "github.com/m-mizutani/goerr/v2"

// NotificationKind discriminates the payload of a Notification
type NotificationKind string

const (
	NotificationEventCreated  NotificationKind = "event_created"
	NotificationEventUpdated  NotificationKind = "event_updated"
	NotificationEventTrashed  NotificationKind = "event_trashed"
	NotificationEventRestored NotificationKind = "event_restored"
	NotificationEventPurged   NotificationKind = "event_purged"
	NotificationCaseUpdated   NotificationKind = "case_updated"
	NotificationCaseDeleted   NotificationKind = "case_deleted"
)

// AllNotificationKinds returns all valid notification kinds
func AllNotificationKinds() []NotificationKind {
	return []NotificationKind{
		NotificationEventCreated,
		NotificationEventUpdated,
		NotificationEventTrashed,
		NotificationEventRestored,
		NotificationEventPurged,
		NotificationCaseUpdated,
		NotificationCaseDeleted,
	}
}

// IsValid checks if the notification kind is valid
func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationEventCreated,
		NotificationEventUpdated,
		NotificationEventTrashed,
		NotificationEventRestored,
		NotificationEventPurged,
		NotificationCaseUpdated,
		NotificationCaseDeleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification kind
func (k NotificationKind) String() string {
	return string(k)
}

// ParseNotificationKind parses a string into a NotificationKind
func ParseNotificationKind(s string) (NotificationKind, error) {
	kind := NotificationKind(s)
	if !kind.IsValid() {
		return "", goerr.New("invalid notification kind", goerr.V("kind", s))
	}
	return kind, nil
}
