package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/model/auth"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/repository/memory"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
	"github.com/secmon-lab/caseline/pkg/usecase"
)

type testEnv struct {
	uc        *usecase.UseCases
	bus       *pubsub.Bus
	transport *pubsub.MemoryTransport
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	transport := pubsub.NewMemoryTransport()
	t.Cleanup(func() { _ = transport.Close() })

	bus := pubsub.New(transport)
	uc := usecase.New(memory.New(), bus)

	return &testEnv{uc: uc, bus: bus, transport: transport}
}

func (e *testEnv) newCase(t *testing.T) *model.Case {
	t.Helper()
	created, err := e.uc.Case.CreateCase(context.Background(), &model.Case{
		Name: "Test investigation",
		ACS:  []string{"sec-team"},
	})
	gt.NoError(t, err).Required()
	return created
}

func (e *testEnv) watch(t *testing.T, caseID types.CaseID) *pubsub.Subscription {
	t.Helper()
	sub, err := e.bus.Subscribe(context.Background(), caseID)
	gt.NoError(t, err).Required()
	t.Cleanup(sub.Close)
	return sub
}

func nextNotification(t *testing.T, sub *pubsub.Subscription) *model.Notification {
	t.Helper()
	select {
	case n, ok := <-sub.Notifications():
		gt.Bool(t, ok).True()
		return n
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func noNotification(t *testing.T, sub *pubsub.Subscription) {
	t.Helper()
	select {
	case n := <-sub.Notifications():
		t.Fatalf("unexpected notification: %s", n.Kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func newEventInput(caseID types.CaseID) *model.TimelineEvent {
	return &model.TimelineEvent{
		CaseID:    caseID,
		Timestamp: time.Now().UTC(),
		Title:     "Malicious process found",
		Creator:   "analyst-1",
		Category:  "observation",
	}
}

func TestCaseUseCase(t *testing.T) {
	t.Run("create assigns ID and get returns it", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		created := env.newCase(t)
		gt.NoError(t, created.ID.Validate())

		got, err := env.uc.Case.GetCase(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Test investigation")
	})

	t.Run("get of unknown case returns not found", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Case.GetCase(context.Background(), types.NewCaseID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, usecase.ErrCaseNotFound)).True()
	})

	t.Run("create rejects unnamed case", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Case.CreateCase(context.Background(), &model.Case{})
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagValidation)).True()
	})

	t.Run("update publishes case_updated", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		created := env.newCase(t)
		sub := env.watch(t, created.ID)

		created.Report = "Initial findings documented"
		updated, err := env.uc.Case.UpdateCase(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Report).Equal("Initial findings documented")

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationCaseUpdated)
		gt.Value(t, n.Case).NotNil()
		gt.Value(t, n.Case.Report).Equal("Initial findings documented")
	})

	t.Run("delete cascades to timeline and publishes case_deleted", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		created := env.newCase(t)

		ev, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(created.ID))
		gt.NoError(t, err).Required()

		sub := env.watch(t, created.ID)

		gt.NoError(t, env.uc.Case.DeleteCase(ctx, created.ID)).Required()

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationCaseDeleted)

		_, err = env.uc.Case.GetCase(ctx, created.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrCaseNotFound)).True()

		// Cascaded events are gone with the case
		_, err = env.uc.Timeline.GetEvent(ctx, created.ID, ev.ID)
		gt.Value(t, err).NotNil()
	})
}

func TestTimelineUseCase(t *testing.T) {
	t.Run("create publishes event_created", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)
		sub := env.watch(t, c.ID)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()
		gt.NoError(t, created.ID.Validate())
		gt.Value(t, created.State.Normalize()).Equal(types.EventStateActive)

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventCreated)
		gt.Value(t, n.Event.ID).Equal(created.ID)
	})

	t.Run("create defaults timestamp and creator", func(t *testing.T) {
		env := newTestEnv(t)
		c := env.newCase(t)
		ctx := auth.ContextWithIdentity(context.Background(),
			&auth.Identity{Sub: "analyst-7", Name: "Analyst Seven"})

		input := newEventInput(c.ID)
		input.Timestamp = time.Time{}
		input.Creator = ""

		created, err := env.uc.Timeline.CreateEvent(ctx, input)
		gt.NoError(t, err).Required()

		gt.Bool(t, created.Timestamp.IsZero()).False()
		gt.Value(t, created.Creator).Equal("analyst-7")
	})

	t.Run("create on missing case fails without publishing", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Timeline.CreateEvent(context.Background(), newEventInput(types.NewCaseID()))
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, usecase.ErrCaseNotFound)).True()
	})

	t.Run("trash publishes once and is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()

		sub := env.watch(t, c.ID)

		trashed, err := env.uc.Timeline.TrashEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, trashed.IsTrashed()).True()

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventTrashed)

		// Second trash succeeds but publishes nothing
		again, err := env.uc.Timeline.TrashEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, again.IsTrashed()).True()
		noNotification(t, sub)
	})

	t.Run("trashed events leave the active list", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		keep, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()
		drop, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()

		_, err = env.uc.Timeline.TrashEvent(ctx, c.ID, drop.ID)
		gt.NoError(t, err).Required()

		active, err := env.uc.Timeline.ListEvents(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(1)
		gt.Value(t, active[0].ID).Equal(keep.ID)

		trashed, err := env.uc.Timeline.ListTrashedEvents(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, trashed).Length(1)
		gt.Value(t, trashed[0].ID).Equal(drop.ID)
	})

	t.Run("restore publishes event_restored", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()
		_, err = env.uc.Timeline.TrashEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err).Required()

		sub := env.watch(t, c.ID)

		restored, err := env.uc.Timeline.RestoreEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, restored.IsTrashed()).False()
		gt.Value(t, restored.TrashedAt).Nil()

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventRestored)
	})

	t.Run("restore of active event fails with invalid state", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()

		_, err = env.uc.Timeline.RestoreEvent(ctx, c.ID, created.ID)
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagInvalidState)).True()
	})

	t.Run("delete requires prior trash", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()

		err = env.uc.Timeline.DeleteEvent(ctx, c.ID, created.ID)
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagInvalidState)).True()

		// The event survives the rejected delete
		_, err = env.uc.Timeline.GetEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err)
	})

	t.Run("trash then delete purges and publishes event_purged", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()
		_, err = env.uc.Timeline.TrashEvent(ctx, c.ID, created.ID)
		gt.NoError(t, err).Required()

		sub := env.watch(t, c.ID)

		gt.NoError(t, env.uc.Timeline.DeleteEvent(ctx, c.ID, created.ID)).Required()

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventPurged)
		gt.Value(t, n.Event.ID).Equal(created.ID)

		_, err = env.uc.Timeline.GetEvent(ctx, c.ID, created.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrEventNotFound)).True()
	})

	t.Run("update publishes event_updated", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		c := env.newCase(t)

		created, err := env.uc.Timeline.CreateEvent(ctx, newEventInput(c.ID))
		gt.NoError(t, err).Required()

		sub := env.watch(t, c.ID)

		created.Title = "Malicious process contained"
		updated, err := env.uc.Timeline.UpdateEvent(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("Malicious process contained")

		n := nextNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventUpdated)
	})
}

func TestCategoryUseCase(t *testing.T) {
	seed := []*model.Category{
		{ID: "note", Name: "Note"},
		{ID: "forensics", Name: "Forensics", Groups: []string{"dfir"}},
		{ID: "escalation", Name: "Escalation", Groups: []string{"sec-team"}},
	}

	t.Run("seed and list", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		gt.NoError(t, env.uc.Category.SeedCategories(ctx, seed)).Required()

		categories, err := env.uc.Category.ListCategories(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, categories).Length(3)
	})

	t.Run("case-scoped list filters by access scope", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		gt.NoError(t, env.uc.Category.SeedCategories(ctx, seed)).Required()
		c := env.newCase(t) // ACS: sec-team

		categories, err := env.uc.Category.ListCaseCategories(ctx, c.ID)
		gt.NoError(t, err).Required()

		ids := make(map[types.CategoryID]bool)
		for _, cat := range categories {
			ids[cat.ID] = true
		}
		gt.Bool(t, ids["note"]).True()       // no groups: usable by all
		gt.Bool(t, ids["escalation"]).True() // matches sec-team
		gt.Bool(t, ids["forensics"]).False() // requires dfir
	})

	t.Run("seed rejects invalid category", func(t *testing.T) {
		env := newTestEnv(t)

		err := env.uc.Category.SeedCategories(context.Background(), []*model.Category{
			{ID: "Bad ID", Name: "Broken"},
		})
		gt.Value(t, err).NotNil()
	})
}
