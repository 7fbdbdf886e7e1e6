package interfaces

import (
	"context"

	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// CategoryRepository defines the interface for Category reference data
type CategoryRepository interface {
	// Put creates or replaces a category
	Put(ctx context.Context, c *model.Category) error

	// Get retrieves a category by ID
	Get(ctx context.Context, id types.CategoryID) (*model.Category, error)

	// List retrieves all categories ordered by ID
	List(ctx context.Context) ([]*model.Category, error)
}
