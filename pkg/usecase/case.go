package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// CaseUseCase manages the case aggregate. Timeline events are owned by
// the case logically, so deleting a case cascade-purges its timeline.
type CaseUseCase struct {
	uc *UseCases
}

func (x *CaseUseCase) CreateCase(ctx context.Context, c *model.Case) (*model.Case, error) {
	if c.ID == "" {
		c = c.Clone()
		c.ID = types.NewCaseID()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := x.uc.repo.Case().Create(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create case", goerr.V(CaseIDKey, c.ID))
	}

	return created, nil
}

func (x *CaseUseCase) GetCase(ctx context.Context, id types.CaseID) (*model.Case, error) {
	c, err := x.uc.repo.Case().Get(ctx, id)
	if err != nil {
		if goerr.HasTag(err, model.TagNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, id))
	}

	return c, nil
}

func (x *CaseUseCase) ListCases(ctx context.Context) ([]*model.Case, error) {
	cases, err := x.uc.repo.Case().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cases")
	}

	return cases, nil
}

func (x *CaseUseCase) UpdateCase(ctx context.Context, c *model.Case) (*model.Case, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	updated, err := x.uc.repo.Case().Update(ctx, c)
	if err != nil {
		if goerr.HasTag(err, model.TagNotFound) {
			return nil, goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, c.ID))
		}
		return nil, goerr.Wrap(err, "failed to update case", goerr.V(CaseIDKey, c.ID))
	}

	x.uc.publish(ctx, model.NewCaseNotification(types.NotificationCaseUpdated, updated))

	return updated, nil
}

// DeleteCase deletes a case and cascade-purges its timeline events.
// A single case_deleted notification is published; the purged events
// are not announced individually because the whole channel goes away
// with the case.
func (x *CaseUseCase) DeleteCase(ctx context.Context, id types.CaseID) error {
	deleted, err := x.GetCase(ctx, id)
	if err != nil {
		return err
	}

	if err := x.uc.repo.TimelineEvent().PurgeByCase(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to purge timeline events", goerr.V(CaseIDKey, id))
	}

	if err := x.uc.repo.Case().Delete(ctx, id); err != nil {
		if goerr.HasTag(err, model.TagNotFound) {
			return goerr.Wrap(ErrCaseNotFound, "case not found", goerr.V(CaseIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete case", goerr.V(CaseIDKey, id))
	}

	x.uc.publish(ctx, model.NewCaseNotification(types.NotificationCaseDeleted, deleted))

	return nil
}
