package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// Case represents an investigation case. It logically owns its timeline
// events: deleting a case cascade-purges the timeline.
type Case struct {
	ID          types.CaseID `json:"id" firestore:"id"`
	Name        string       `json:"name" firestore:"name"`
	Description string       `json:"description" firestore:"description"`
	ACS         []string     `json:"acs" firestore:"acs"`
	Report      string       `json:"report,omitempty" firestore:"report"`
	CreatedAt   time.Time    `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" firestore:"updated_at"`
}

// Validate checks required fields of the case
func (x *Case) Validate() error {
	if x.Name == "" {
		return goerr.New("case name is required", goerr.T(TagValidation))
	}
	return nil
}

// Clone returns a deep copy of the case
func (x *Case) Clone() *Case {
	copied := *x
	copied.ACS = slices.Clone(x.ACS)
	return &copied
}
