package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

type categoryRepository struct {
	mu         sync.RWMutex
	categories map[types.CategoryID]*model.Category
}

func newCategoryRepository() *categoryRepository {
	return &categoryRepository{
		categories: make(map[types.CategoryID]*model.Category),
	}
}

func (r *categoryRepository) Put(ctx context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories[c.ID] = c.Clone()
	return nil
}

func (r *categoryRepository) Get(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.categories[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "category not found", goerr.V("id", id))
	}
	return c.Clone(), nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]*model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c.Clone())
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].ID < categories[j].ID
	})

	return categories, nil
}
