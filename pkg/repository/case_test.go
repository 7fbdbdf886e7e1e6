package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/repository/firestore"
	"github.com/secmon-lab/caseline/pkg/repository/memory"
)

func runCaseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, &model.Case{
			ID:          types.NewCaseID(),
			Name:        "Suspicious login investigation",
			Description: "Multiple failed logins from unusual locations",
			ACS:         []string{"sec-team", "it-ops"},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.Name).Equal("Suspicious login investigation")
		gt.Array(t, created.ACS).Length(2)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Get retrieves existing case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, &model.Case{
			ID:   types.NewCaseID(),
			Name: "Phishing campaign",
			ACS:  []string{"sec-team"},
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Case().Get(ctx, created.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.Name).Equal(created.Name)
		gt.Array(t, retrieved.ACS).Length(1)
	})

	t.Run("Get returns tagged error for non-existent case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Case().Get(ctx, types.NewCaseID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagNotFound)).True()
	})

	t.Run("Update preserves creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, &model.Case{
			ID:   types.NewCaseID(),
			Name: "Original name",
		})
		gt.NoError(t, err).Required()

		created.Name = "Updated name"
		created.Report = "Root cause identified"

		updated, err := repo.Case().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Name).Equal("Updated name")
		gt.Value(t, updated.Report).Equal("Root cause identified")
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Update returns tagged error for non-existent case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Case().Update(ctx, &model.Case{
			ID:   types.NewCaseID(),
			Name: "Ghost case",
		})
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagNotFound)).True()
	})

	t.Run("Delete removes existing case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Case().Create(ctx, &model.Case{
			ID:   types.NewCaseID(),
			Name: "To be deleted",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Case().Delete(ctx, created.ID)).Required()

		_, err = repo.Case().Get(ctx, created.ID)
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagNotFound)).True()
	})

	t.Run("List returns created cases", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ids := make(map[types.CaseID]bool)
		for i := 0; i < 3; i++ {
			created, err := repo.Case().Create(ctx, &model.Case{
				ID:   types.NewCaseID(),
				Name: "Listed case",
			})
			gt.NoError(t, err).Required()
			ids[created.ID] = true
		}

		cases, err := repo.Case().List(ctx)
		gt.NoError(t, err).Required()

		found := 0
		for _, c := range cases {
			if ids[c.ID] {
				found++
			}
		}
		gt.Number(t, found).Equal(3)
	})
}

func TestCaseRepository_Memory(t *testing.T) {
	runCaseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestCaseRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runCaseRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "")
		gt.NoError(t, err).Required()
		return repo
	})
}
