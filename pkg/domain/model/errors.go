package model

import "github.com/m-mizutani/goerr/v2"

// Error tags shared across repository backends and use cases. HTTP
// handlers map them to status codes, so both the memory and Firestore
// backends must attach the same tags for the same failure class.
var (
	// TagNotFound marks errors for a case or event that does not exist
	// (including purged events).
	TagNotFound = goerr.NewTag("not_found")

	// TagInvalidState marks operations that are not legal in the
	// entity's current lifecycle state, e.g. hard-deleting an active
	// event. These are expected outcomes the caller branches on.
	TagInvalidState = goerr.NewTag("invalid_state")

	// TagValidation marks malformed or missing required input.
	TagValidation = goerr.NewTag("validation")
)
