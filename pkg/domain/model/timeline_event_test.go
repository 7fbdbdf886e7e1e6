package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

func validEvent() *model.TimelineEvent {
	return &model.TimelineEvent{
		ID:        types.NewEventID(),
		CaseID:    types.NewCaseID(),
		Timestamp: time.Now().UTC(),
		Title:     "Endpoint isolated",
		Creator:   "analyst-1",
		Category:  "containment",
	}
}

func TestTimelineEventValidate(t *testing.T) {
	t.Run("valid event passes", func(t *testing.T) {
		gt.NoError(t, validEvent().Validate())
	})

	t.Run("missing title fails", func(t *testing.T) {
		ev := validEvent()
		ev.Title = ""
		err := ev.Validate()
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagValidation)).True()
	})

	t.Run("missing creator fails", func(t *testing.T) {
		ev := validEvent()
		ev.Creator = ""
		gt.Value(t, ev.Validate()).NotNil()
	})

	t.Run("missing category fails", func(t *testing.T) {
		ev := validEvent()
		ev.Category = ""
		gt.Value(t, ev.Validate()).NotNil()
	})
}

func TestTimelineEventLifecycle(t *testing.T) {
	t.Run("trash marks state and records time", func(t *testing.T) {
		ev := validEvent()
		now := time.Now().UTC()

		gt.Bool(t, ev.Trash(now)).True()
		gt.Bool(t, ev.IsTrashed()).True()
		gt.Value(t, ev.TrashedAt).NotNil()
		gt.Bool(t, ev.TrashedAt.Equal(now)).True()
	})

	t.Run("trash of trashed event is a no-op", func(t *testing.T) {
		ev := validEvent()
		first := time.Now().UTC()
		gt.Bool(t, ev.Trash(first)).True()

		gt.Bool(t, ev.Trash(first.Add(time.Hour))).False()
		gt.Bool(t, ev.TrashedAt.Equal(first)).True()
	})

	t.Run("restore clears trash state", func(t *testing.T) {
		ev := validEvent()
		ev.Trash(time.Now().UTC())

		gt.NoError(t, ev.Restore()).Required()
		gt.Bool(t, ev.IsTrashed()).False()
		gt.Value(t, ev.TrashedAt).Nil()
	})

	t.Run("restore of active event fails", func(t *testing.T) {
		ev := validEvent()
		err := ev.Restore()
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagInvalidState)).True()
	})

	t.Run("purge requires trashed state", func(t *testing.T) {
		ev := validEvent()
		err := ev.Purgeable()
		gt.Value(t, err).NotNil()
		gt.Bool(t, goerr.HasTag(err, model.TagInvalidState)).True()

		ev.Trash(time.Now().UTC())
		gt.NoError(t, ev.Purgeable())
	})

	t.Run("empty state normalizes to active", func(t *testing.T) {
		ev := validEvent()
		ev.State = ""
		gt.Bool(t, ev.IsTrashed()).False()
	})
}

func TestTimelineEventBefore(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("orders by timestamp", func(t *testing.T) {
		a := validEvent()
		a.Timestamp = base
		b := validEvent()
		b.Timestamp = base.Add(time.Minute)

		gt.Bool(t, a.Before(b)).True()
		gt.Bool(t, b.Before(a)).False()
	})

	t.Run("breaks timestamp ties by ID", func(t *testing.T) {
		a := validEvent()
		a.ID = "0a000000-0000-0000-0000-000000000000"
		a.Timestamp = base
		b := validEvent()
		b.ID = "0b000000-0000-0000-0000-000000000000"
		b.Timestamp = base

		gt.Bool(t, a.Before(b)).True()
		gt.Bool(t, b.Before(a)).False()
	})
}

func TestCategoryUsableBy(t *testing.T) {
	t.Run("no groups means usable by all", func(t *testing.T) {
		c := &model.Category{ID: "note", Name: "Note"}
		gt.Bool(t, c.UsableBy(nil)).True()
		gt.Bool(t, c.UsableBy([]string{"anything"})).True()
	})

	t.Run("requires group overlap", func(t *testing.T) {
		c := &model.Category{ID: "forensics", Name: "Forensics", Groups: []string{"dfir"}}
		gt.Bool(t, c.UsableBy([]string{"sec-team"})).False()
		gt.Bool(t, c.UsableBy([]string{"sec-team", "dfir"})).True()
	})
}
