package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
)

// Firestore is the production repository backend. Multiple server
// processes may share one database; per-event serialization relies on
// Firestore transactions, not process-local locks.
type Firestore struct {
	client   *firestore.Client
	caseRepo *caseRepository
	event    *timelineEventRepository
	category *categoryRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes all collection names, for sharing one
// database between environments
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.caseRepo.collectionPrefix = prefix
		f.event.collectionPrefix = prefix
		f.category.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		caseRepo: newCaseRepository(client),
		event:    newTimelineEventRepository(client),
		category: newCategoryRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.caseRepo
}

func (f *Firestore) TimelineEvent() interfaces.TimelineEventRepository {
	return f.event
}

func (f *Firestore) Category() interfaces.CategoryRepository {
	return f.category
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
