package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

type caseRepository struct {
	mu    sync.RWMutex
	cases map[types.CaseID]*model.Case
}

func newCaseRepository() *caseRepository {
	return &caseRepository{
		cases: make(map[types.CaseID]*model.Case),
	}
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return nil, goerr.New("case already exists", goerr.V("id", c.ID))
	}

	now := time.Now().UTC()
	created := c.Clone()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.cases[created.ID] = created
	return created.Clone(), nil
}

func (r *caseRepository) Get(ctx context.Context, id types.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cases[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
	}

	return c.Clone(), nil
}

func (r *caseRepository) List(ctx context.Context) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cases := make([]*model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		cases = append(cases, c.Clone())
	}

	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.Before(cases[j].CreatedAt)
		}
		return cases[i].ID < cases[j].ID
	})

	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.cases[c.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", c.ID))
	}

	updated := c.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.cases[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *caseRepository) Delete(ctx context.Context, id types.CaseID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[id]; !exists {
		return goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
	}

	delete(r.cases, id)
	return nil
}
