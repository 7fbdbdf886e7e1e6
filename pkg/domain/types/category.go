package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// CategoryID represents a unique identifier for a timeline event category
type CategoryID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the CategoryID is valid
func (x CategoryID) Validate() error {
	if x == "" {
		return goerr.New("category ID cannot be empty")
	}
	if !idPattern.MatchString(string(x)) {
		return goerr.New("category ID must be lowercase alphanumeric with hyphens", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of CategoryID
func (x CategoryID) String() string {
	return string(x)
}
