package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type caseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCaseRepository(client *firestore.Client) *caseRepository {
	return &caseRepository{
		client: client,
	}
}

func (r *caseRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_cases"
	}
	return "cases"
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	now := time.Now().UTC()
	created := c.Clone()
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.collection()).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create case", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *caseRepository) Get(ctx context.Context, id types.CaseID) (*model.Case, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("id", id))
	}

	var c model.Case
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V("id", id))
	}

	return &c, nil
}

func (r *caseRepository) List(ctx context.Context) ([]*model.Case, error) {
	iter := r.client.Collection(r.collection()).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var cases []*model.Case
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cases")
		}

		var c model.Case
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", docSnap.Ref.ID))
		}

		cases = append(cases, &c)
	}

	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	docRef := r.client.Collection(r.collection()).Doc(c.ID.String())

	updated := c.Clone()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", c.ID))
			}
			return goerr.Wrap(err, "failed to get case", goerr.V("id", c.ID))
		}

		var existing model.Case
		if err := docSnap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode case", goerr.V("id", c.ID))
		}

		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *caseRepository) Delete(ctx context.Context, id types.CaseID) error {
	docRef := r.client.Collection(r.collection()).Doc(id.String())

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(docRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "case not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get case", goerr.V("id", id))
		}
		return tx.Delete(docRef)
	})
}
