package pubsub

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/caseline/pkg/domain/interfaces"
)

// RedisTransport delivers payloads over Redis pub/sub so that multiple
// server processes share subscribers. Channel keys are stable across
// processes (see ChannelKey).
type RedisTransport struct {
	client *redis.Client
}

var _ interfaces.PubSubTransport = &RedisTransport{}

func NewRedisTransport(ctx context.Context, addr, password string, db int) (*RedisTransport, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}

	return &RedisTransport{
		client: client,
	}, nil
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := t.client.Publish(ctx, channel, payload).Err(); err != nil {
		return goerr.Wrap(err, "failed to publish to redis", goerr.V("channel", channel))
	}
	return nil
}

func (t *RedisTransport) Subscribe(ctx context.Context, channel string) (interfaces.Subscription, error) {
	ps := t.client.Subscribe(ctx, channel)

	// Force the subscription to be established before returning, so a
	// publish issued after Subscribe is guaranteed to reach it.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, goerr.Wrap(err, "failed to subscribe to redis", goerr.V("channel", channel))
	}

	sub := &redisSubscription{
		ps: ps,
		ch: make(chan []byte, subscriberBuffer),
	}
	go sub.pump()

	return sub, nil
}

func (t *RedisTransport) Close() error {
	return t.client.Close()
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan []byte
	once sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.ch)
	for msg := range s.ps.Channel() {
		select {
		case s.ch <- []byte(msg.Payload):
		default:
			// Same overflow policy as the in-memory transport: drop
			// rather than block the pump behind a stalled receiver.
		}
	}
}

func (s *redisSubscription) Receive() <-chan []byte {
	return s.ch
}

func (s *redisSubscription) Close() {
	s.once.Do(func() {
		// Closing the PubSub closes its message channel, which ends
		// the pump goroutine and closes Receive.
		_ = s.ps.Close()
	})
}
