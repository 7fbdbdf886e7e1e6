package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

func TestCaseID(t *testing.T) {
	t.Run("generated IDs are valid UUIDs", func(t *testing.T) {
		id := types.NewCaseID()
		gt.NoError(t, id.Validate())
		gt.Value(t, id).NotEqual(types.NewCaseID())
	})

	t.Run("empty ID is invalid", func(t *testing.T) {
		gt.Value(t, types.CaseID("").Validate()).NotNil()
	})

	t.Run("non-UUID is invalid", func(t *testing.T) {
		gt.Value(t, types.CaseID("case-123").Validate()).NotNil()
	})
}

func TestEventID(t *testing.T) {
	t.Run("generated IDs are valid UUIDs", func(t *testing.T) {
		id := types.NewEventID()
		gt.NoError(t, id.Validate())
	})

	t.Run("non-UUID is invalid", func(t *testing.T) {
		gt.Value(t, types.EventID("not-a-uuid").Validate()).NotNil()
	})
}

func TestCategoryID(t *testing.T) {
	t.Run("lowercase alphanumeric with hyphens is valid", func(t *testing.T) {
		gt.NoError(t, types.CategoryID("initial-access").Validate())
		gt.NoError(t, types.CategoryID("note").Validate())
		gt.NoError(t, types.CategoryID("tier2-escalation").Validate())
	})

	t.Run("invalid forms are rejected", func(t *testing.T) {
		for _, id := range []string{"", "Note", "has space", "-leading", "trailing-", "double--hyphen"} {
			gt.Value(t, types.CategoryID(id).Validate()).NotNil()
		}
	})
}

func TestEventState(t *testing.T) {
	t.Run("empty state normalizes to active", func(t *testing.T) {
		gt.Value(t, types.EventState("").Normalize()).Equal(types.EventStateActive)
		gt.Value(t, types.EventStateTrashed.Normalize()).Equal(types.EventStateTrashed)
	})

	t.Run("parse accepts only known states", func(t *testing.T) {
		state, err := types.ParseEventState("TRASHED")
		gt.NoError(t, err).Required()
		gt.Value(t, state).Equal(types.EventStateTrashed)

		_, err = types.ParseEventState("PURGED")
		gt.Value(t, err).NotNil()
	})
}

func TestNotificationKind(t *testing.T) {
	t.Run("all kinds are valid", func(t *testing.T) {
		for _, kind := range types.AllNotificationKinds() {
			gt.Bool(t, kind.IsValid()).True()
		}
	})

	t.Run("parse rejects unknown kinds", func(t *testing.T) {
		_, err := types.ParseNotificationKind("event_exploded")
		gt.Value(t, err).NotNil()
	})
}
