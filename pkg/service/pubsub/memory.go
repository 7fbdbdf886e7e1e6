package pubsub

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
)

// subscriberBuffer absorbs bursts per subscriber. When it overflows the
// payload is dropped for that subscriber with a log line instead of
// blocking the publisher or growing an unbounded queue.
const subscriberBuffer = 64

// MemoryTransport is an in-process pub/sub transport for development
// and tests. Membership changes and publishes share one RWMutex:
// publish holds the read lock while sending, so a subscription can
// never be closed mid-delivery.
type MemoryTransport struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
}

var _ interfaces.PubSubTransport = &MemoryTransport{}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		subs: make(map[string]map[*memorySubscription]struct{}),
	}
}

func (t *MemoryTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return goerr.New("transport is closed", goerr.V("channel", channel))
	}

	for sub := range t.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
			logging.From(ctx).Warn("subscriber buffer full, payload dropped",
				"channel", channel)
		}
	}

	return nil
}

func (t *MemoryTransport) Subscribe(ctx context.Context, channel string) (interfaces.Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, goerr.New("transport is closed", goerr.V("channel", channel))
	}

	sub := &memorySubscription{
		transport: t,
		channel:   channel,
		ch:        make(chan []byte, subscriberBuffer),
	}
	if _, exists := t.subs[channel]; !exists {
		t.subs[channel] = make(map[*memorySubscription]struct{})
	}
	t.subs[channel][sub] = struct{}{}

	return sub, nil
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	for channel, subs := range t.subs {
		for sub := range subs {
			sub.closed = true
			close(sub.ch)
		}
		delete(t.subs, channel)
	}

	return nil
}

// remove deregisters the subscription and closes its channel. Holding
// the write lock excludes in-flight publishes, so no payload is
// delivered once removal is observed.
func (t *MemoryTransport) remove(sub *memorySubscription) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true

	if subs, exists := t.subs[sub.channel]; exists {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(t.subs, sub.channel)
		}
	}
	close(sub.ch)
}

type memorySubscription struct {
	transport *MemoryTransport
	channel   string
	ch        chan []byte
	closed    bool // guarded by transport.mu
}

func (s *memorySubscription) Receive() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() {
	s.transport.remove(s)
}
