package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
)

// Bus is the per-case notification fan-out layer. It maps case IDs to
// channels, JSON-encodes notifications across the injected transport,
// and hands typed notifications to subscribers. Delivery is best
// effort: no acknowledgment, no retry, no persistence.
type Bus struct {
	transport interfaces.PubSubTransport
}

func New(transport interfaces.PubSubTransport) *Bus {
	return &Bus{
		transport: transport,
	}
}

// Publish broadcasts the notification to all current subscribers of the
// case's channel. It returns an error only when handing the payload to
// the transport fails; callers on the mutation path log and swallow it
// because the state change has already committed.
func (b *Bus) Publish(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return goerr.Wrap(err, "failed to encode notification",
			goerr.V("case_id", n.CaseID), goerr.V("kind", n.Kind))
	}

	channel := ChannelKey(n.CaseID)
	if err := b.transport.Publish(ctx, channel, payload); err != nil {
		return goerr.Wrap(err, "failed to publish notification",
			goerr.V("channel", channel), goerr.V("kind", n.Kind))
	}

	return nil
}

// Subscribe opens a subscription on the case's channel. The returned
// subscription must be closed by the caller on every exit path.
func (b *Bus) Subscribe(ctx context.Context, caseID types.CaseID) (*Subscription, error) {
	raw, err := b.transport.Subscribe(ctx, ChannelKey(caseID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to subscribe", goerr.V("case_id", caseID))
	}

	sub := &Subscription{
		raw:  raw,
		ch:   make(chan *model.Notification),
		done: make(chan struct{}),
	}
	go sub.decode(logging.With(context.Background(), logging.From(ctx)))

	return sub, nil
}

// Subscription delivers decoded notifications for one case channel
type Subscription struct {
	raw  interfaces.Subscription
	ch   chan *model.Notification
	done chan struct{}
	once sync.Once
}

// Notifications returns the channel delivering notifications in publish
// order. It is closed after Close, or when the transport shuts down.
func (s *Subscription) Notifications() <-chan *model.Notification {
	return s.ch
}

// Close releases the underlying transport subscription. Safe to call
// more than once. After Close returns, no further notification is
// delivered and the Notifications channel gets closed.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.raw.Close()
}

// decode pumps raw payloads into typed notifications, holding at most
// one in-flight notification. It exits when the transport channel
// closes or the subscription is released while the receiver is gone.
func (s *Subscription) decode(ctx context.Context) {
	defer close(s.ch)

	for payload := range s.raw.Receive() {
		var n model.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			logging.From(ctx).Warn("dropping undecodable notification payload",
				"error", err.Error(), "size", len(payload))
			continue
		}
		select {
		case s.ch <- &n:
		case <-s.done:
			return
		}
	}
}
