package pubsub_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/service/pubsub"
)

func receiveNotification(t *testing.T, sub *pubsub.Subscription) *model.Notification {
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

func newBusEvent(caseID types.CaseID, title string) *model.TimelineEvent {
	return &model.TimelineEvent{
		ID:        types.NewEventID(),
		CaseID:    caseID,
		Timestamp: time.Now().UTC(),
		Title:     title,
		Creator:   "analyst-1",
		Category:  "observation",
	}
}

func TestChannelKey(t *testing.T) {
	a := types.NewCaseID()
	b := types.NewCaseID()

	gt.Value(t, pubsub.ChannelKey(a)).NotEqual(pubsub.ChannelKey(b))
	gt.Value(t, pubsub.ChannelKey(a)).Equal(pubsub.ChannelKey(a))
}

func TestBusDelivery(t *testing.T) {
	t.Run("subscriber receives published notification", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()
		bus := pubsub.New(transport)
		ctx := context.Background()
		caseID := types.NewCaseID()

		sub, err := bus.Subscribe(ctx, caseID)
		gt.NoError(t, err).Required()
		defer sub.Close()

		ev := newBusEvent(caseID, "Alert triaged")
		gt.NoError(t, bus.Publish(ctx, model.NewEventNotification(types.NotificationEventCreated, ev))).Required()

		n := receiveNotification(t, sub)
		gt.Value(t, n.Kind).Equal(types.NotificationEventCreated)
		gt.Value(t, n.CaseID).Equal(caseID)
		gt.Value(t, n.Event).NotNil()
		gt.Value(t, n.Event.Title).Equal("Alert triaged")
	})

	t.Run("all subscribers of a case see the same order", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()
		bus := pubsub.New(transport)
		ctx := context.Background()
		caseID := types.NewCaseID()

		sub1, err := bus.Subscribe(ctx, caseID)
		gt.NoError(t, err).Required()
		defer sub1.Close()
		sub2, err := bus.Subscribe(ctx, caseID)
		gt.NoError(t, err).Required()
		defer sub2.Close()

		titles := []string{"first", "second", "third"}
		for _, title := range titles {
			ev := newBusEvent(caseID, title)
			gt.NoError(t, bus.Publish(ctx, model.NewEventNotification(types.NotificationEventCreated, ev))).Required()
		}

		for _, sub := range []*pubsub.Subscription{sub1, sub2} {
			for _, want := range titles {
				n := receiveNotification(t, sub)
				gt.Value(t, n.Event.Title).Equal(want)
			}
		}
	})

	t.Run("notifications do not cross cases", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()
		bus := pubsub.New(transport)
		ctx := context.Background()
		caseA := types.NewCaseID()
		caseB := types.NewCaseID()

		subA, err := bus.Subscribe(ctx, caseA)
		gt.NoError(t, err).Required()
		defer subA.Close()

		evB := newBusEvent(caseB, "other case event")
		gt.NoError(t, bus.Publish(ctx, model.NewEventNotification(types.NotificationEventCreated, evB))).Required()
		evA := newBusEvent(caseA, "own case event")
		gt.NoError(t, bus.Publish(ctx, model.NewEventNotification(types.NotificationEventCreated, evA))).Required()

		n := receiveNotification(t, subA)
		gt.Value(t, n.CaseID).Equal(caseA)
		gt.Value(t, n.Event.Title).Equal("own case event")
	})

	t.Run("closed subscription stops delivery", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()
		bus := pubsub.New(transport)
		ctx := context.Background()
		caseID := types.NewCaseID()

		sub, err := bus.Subscribe(ctx, caseID)
		gt.NoError(t, err).Required()
		sub.Close()

		// Publish after close must not reach the subscriber
		ev := newBusEvent(caseID, "after close")
		gt.NoError(t, bus.Publish(ctx, model.NewEventNotification(types.NotificationEventCreated, ev)))

		deadline := time.After(time.Second)
		for {
			select {
			case n, ok := <-sub.Notifications():
				if !ok {
					return
				}
				t.Fatalf("unexpected notification after close: %v", n.Kind)
			case <-deadline:
				t.Fatal("notification channel was not closed")
			}
		}
	})

	t.Run("publish without subscribers succeeds", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()
		bus := pubsub.New(transport)

		ev := newBusEvent(types.NewCaseID(), "nobody listening")
		gt.NoError(t, bus.Publish(context.Background(), model.NewEventNotification(types.NotificationEventCreated, ev)))
	})

	t.Run("publish to closed transport fails", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		bus := pubsub.New(transport)
		gt.NoError(t, transport.Close()).Required()

		ev := newBusEvent(types.NewCaseID(), "too late")
		err := bus.Publish(context.Background(), model.NewEventNotification(types.NotificationEventCreated, ev))
		gt.Value(t, err).NotNil()
	})
}

func TestMemoryTransportClose(t *testing.T) {
	t.Run("close ends all subscriptions", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		ctx := context.Background()

		sub, err := transport.Subscribe(ctx, "caseline-test-channel")
		gt.NoError(t, err).Required()

		gt.NoError(t, transport.Close()).Required()

		select {
		case _, ok := <-sub.Receive():
			gt.Bool(t, ok).False()
		case <-time.After(time.Second):
			t.Fatal("receive channel was not closed")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		gt.NoError(t, transport.Close())
		gt.NoError(t, transport.Close())
	})

	t.Run("subscription close is idempotent", func(t *testing.T) {
		transport := pubsub.NewMemoryTransport()
		defer transport.Close()

		sub, err := transport.Subscribe(context.Background(), "caseline-test-channel")
		gt.NoError(t, err).Required()

		sub.Close()
		sub.Close()
	})
}
