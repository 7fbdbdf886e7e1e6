package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// CategoryUseCase serves category reference data
type CategoryUseCase struct {
	uc *UseCases
}

// SeedCategories upserts the configured categories into the repository.
// Called once at startup from the loaded application config.
func (x *CategoryUseCase) SeedCategories(ctx context.Context, categories []*model.Category) error {
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := x.uc.repo.Category().Put(ctx, c); err != nil {
			return goerr.Wrap(err, "failed to seed category", goerr.V("category_id", c.ID))
		}
	}
	return nil
}

func (x *CategoryUseCase) GetCategory(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	c, err := x.uc.repo.Category().Get(ctx, id)
	if err != nil {
		if goerr.HasTag(err, model.TagNotFound) {
			return nil, goerr.Wrap(ErrCategoryNotFound, "category not found", goerr.V("category_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get category", goerr.V("category_id", id))
	}

	return c, nil
}

func (x *CategoryUseCase) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := x.uc.repo.Category().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

// ListCaseCategories returns the categories usable by the given case,
// filtered by the case's access control scope.
func (x *CategoryUseCase) ListCaseCategories(ctx context.Context, caseID types.CaseID) ([]*model.Category, error) {
	c, err := x.uc.Case.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	all, err := x.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	usable := make([]*model.Category, 0, len(all))
	for _, category := range all {
		if category.UsableBy(c.ACS) {
			usable = append(usable, category)
		}
	}

	return usable, nil
}
