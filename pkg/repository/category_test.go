package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/repository/firestore"
	"github.com/secmon-lab/caseline/pkg/repository/memory"
)

func newTestCategoryID(t *testing.T) types.CategoryID {
	t.Helper()
	return types.CategoryID(fmt.Sprintf("test-category-%d", time.Now().UnixNano()))
}

func runCategoryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newTestCategoryID(t)
		err := repo.Category().Put(ctx, &model.Category{
			ID:       id,
			Name:     "Observation",
			Icon:     "eye",
			Template: "What was observed and when?",
			Groups:   []string{"sec-team"},
		})
		gt.NoError(t, err).Required()

		got, err := repo.Category().Get(ctx, id)
		gt.NoError(t, err).Required()

		gt.Value(t, got.ID).Equal(id)
		gt.Value(t, got.Name).Equal("Observation")
		gt.Value(t, got.Icon).Equal("eye")
		gt.Value(t, got.Template).Equal("What was observed and when?")
		gt.Array(t, got.Groups).Length(1)
	})

	t.Run("Put overwrites existing category", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newTestCategoryID(t)
		gt.NoError(t, repo.Category().Put(ctx, &model.Category{ID: id, Name: "Before"})).Required()
		gt.NoError(t, repo.Category().Put(ctx, &model.Category{ID: id, Name: "After"})).Required()

		got, err := repo.Category().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("After")
	})

	t.Run("Get returns tagged error for non-existent category", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Category().Get(ctx, newTestCategoryID(t))
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagNotFound)).True()
	})

	t.Run("List returns stored categories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ids := make(map[types.CategoryID]bool)
		for i := 0; i < 3; i++ {
			id := types.CategoryID(fmt.Sprintf("test-list-%d-%d", time.Now().UnixNano(), i))
			gt.NoError(t, repo.Category().Put(ctx, &model.Category{ID: id, Name: "Listed"})).Required()
			ids[id] = true
		}

		categories, err := repo.Category().List(ctx)
		gt.NoError(t, err).Required()

		found := 0
		for _, c := range categories {
			if ids[c.ID] {
				found++
			}
		}
		gt.Number(t, found).Equal(3)
	})
}

func TestCategoryRepository_Memory(t *testing.T) {
	runCategoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestCategoryRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runCategoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "")
		gt.NoError(t, err).Required()
		return repo
	})
}
