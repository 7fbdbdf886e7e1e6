package interfaces

import (
	"context"

	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// CaseRepository defines the interface for Case data access
type CaseRepository interface {
	// Create creates a new case. The ID must be set by the caller.
	Create(ctx context.Context, c *model.Case) (*model.Case, error)

	// Get retrieves a case by ID
	Get(ctx context.Context, id types.CaseID) (*model.Case, error)

	// List retrieves all cases ordered by creation time
	List(ctx context.Context) ([]*model.Case, error)

	// Update updates an existing case
	Update(ctx context.Context, c *model.Case) (*model.Case, error)

	// Delete deletes a case by ID. Timeline events are owned by the
	// case logically, not physically: the use case layer is
	// responsible for cascade-purging them.
	Delete(ctx context.Context, id types.CaseID) error
}
