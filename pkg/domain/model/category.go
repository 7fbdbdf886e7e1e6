package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// Category is read-mostly reference data describing a kind of timeline
// event. It is independent of the case/timeline lifecycle.
type Category struct {
	ID       types.CategoryID `json:"id" firestore:"id"`
	Name     string           `json:"name" firestore:"name"`
	Icon     string           `json:"icon" firestore:"icon"`
	Template string           `json:"template,omitempty" firestore:"template"`
	Groups   []string         `json:"groups" firestore:"groups"`
}

// Validate checks required fields of the category
func (x *Category) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category ID", goerr.T(TagValidation))
	}
	if x.Name == "" {
		return goerr.New("category name is required", goerr.T(TagValidation), goerr.V("id", x.ID))
	}
	return nil
}

// UsableBy reports whether the category may be used by a case with the
// given access control scope. A category with no groups is usable by
// everyone.
func (x *Category) UsableBy(acs []string) bool {
	if len(x.Groups) == 0 {
		return true
	}
	for _, g := range x.Groups {
		if slices.Contains(acs, g) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the category
func (x *Category) Clone() *Category {
	copied := *x
	copied.Groups = slices.Clone(x.Groups)
	return &copied
}
