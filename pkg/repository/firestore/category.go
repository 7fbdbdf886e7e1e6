package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type categoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCategoryRepository(client *firestore.Client) *categoryRepository {
	return &categoryRepository{
		client: client,
	}
}

func (r *categoryRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_categories"
	}
	return "categories"
}

func (r *categoryRepository) Put(ctx context.Context, c *model.Category) error {
	if _, err := r.client.Collection(r.collection()).Doc(c.ID.String()).Set(ctx, c); err != nil {
		return goerr.Wrap(err, "failed to put category", goerr.V("id", c.ID))
	}
	return nil
}

func (r *categoryRepository) Get(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "category not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get category", goerr.V("id", id))
	}

	var c model.Category
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode category", goerr.V("id", id))
	}

	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	iter := r.client.Collection(r.collection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	categories := make([]*model.Category, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate categories")
		}

		var c model.Category
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode category", goerr.V("doc_id", docSnap.Ref.ID))
		}

		categories = append(categories, &c)
	}

	return categories, nil
}
