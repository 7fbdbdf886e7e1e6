package types

import "github.com/m-mizutani/goerr/v2"

// EventState represents the lifecycle state of a timeline event.
// A purged event has no state: it is removed from storage entirely, so
// only Active and Trashed are ever persisted or transported.
type EventState string

const (
	EventStateActive  EventState = "ACTIVE"
	EventStateTrashed EventState = "TRASHED"
)

// AllEventStates returns all persistable event states
func AllEventStates() []EventState {
	return []EventState{
		EventStateActive,
		EventStateTrashed,
	}
}

// IsValid checks if the event state is valid
func (s EventState) IsValid() bool {
	switch s {
	case EventStateActive,
		EventStateTrashed:
		return true
	default:
		return false
	}
}

// Normalize returns the state, treating empty as EventStateActive for
// records written before the state tag was introduced.
func (s EventState) Normalize() EventState {
	if s == "" {
		return EventStateActive
	}
	return s
}

// String returns the string representation of the event state
func (s EventState) String() string {
	return string(s)
}

// ParseEventState parses a string into an EventState
func ParseEventState(s string) (EventState, error) {
	state := EventState(s)
	if !state.IsValid() {
		return "", goerr.New("invalid event state", goerr.V("state", s))
	}
	return state, nil
}
