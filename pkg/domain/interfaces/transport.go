package interfaces

import "context"

// Subscription is a handle on a channel subscription. Close releases
// the subscription deterministically: after Close returns, no further
// payload is delivered and the Receive channel is closed.
type Subscription interface {
	// Receive returns the channel delivering raw payloads in publish
	// order. It is closed when the subscription is released.
	Receive() <-chan []byte

	// Close releases the subscription. Safe to call more than once.
	Close()
}

// PubSubTransport is the backing publish/subscribe transport. The
// notification bus serializes payloads across this boundary, so an
// in-memory transport (single process) and Redis (multi process) are
// interchangeable.
type PubSubTransport interface {
	// Publish broadcasts the payload to all current subscribers of the
	// channel, best-effort. It must not block on subscriber speed.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe registers a new subscriber on the channel
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	// Close releases all subscriptions and the underlying connection
	Close() error
}
