package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// CaseID is a UUID-based identifier for Case
type CaseID string

// NewCaseID generates a new UUID v4 CaseID
func NewCaseID() CaseID {
	return CaseID(uuid.New().String())
}

// Validate checks if the CaseID is a well-formed UUID
func (x CaseID) Validate() error {
	if x == "" {
		return goerr.New("case ID cannot be empty")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "case ID must be a UUID", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of CaseID
func (x CaseID) String() string {
	return string(x)
}

// EventID is a UUID-based identifier for TimelineEvent. It is unique
// within the owning case.
type EventID string

// NewEventID generates a new UUID v4 EventID
func NewEventID() EventID {
	return EventID(uuid.New().String())
}

// Validate checks if the EventID is a well-formed UUID
func (x EventID) Validate() error {
	if x == "" {
		return goerr.New("event ID cannot be empty")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "event ID must be a UUID", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of EventID
func (x EventID) String() string {
	return string(x)
}

// ClientID identifies a streaming client. It is opaque to the server:
// clients may supply their own, otherwise one is generated per connection.
type ClientID string

// NewClientID generates a new UUID v4 ClientID
func NewClientID() ClientID {
	return ClientID(uuid.New().String())
}

// String returns the string representation of ClientID
func (x ClientID) String() string {
	return string(x)
}
