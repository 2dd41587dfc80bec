package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "larder:changes:"

// RedisBroker distributes notifications between API instances over Redis
// pub/sub.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	if err := b.client.Publish(ctx, channelPrefix+topic, "changed").Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (Listener, error) {
	ps := b.client.Subscribe(ctx, channelPrefix+topic)
	// Wait for the subscription confirmation so that no publish issued after
	// Subscribe returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("realtime: subscribe %s: %w", topic, err)
	}
	l := &redisListener{ps: ps, ch: make(chan struct{}, 1), done: make(chan struct{})}
	go l.forward()
	return l, nil
}

type redisListener struct {
	ps   *redis.PubSub
	ch   chan struct{}
	done chan struct{}
	once sync.Once
	err  error
}

func (l *redisListener) forward() {
	defer close(l.done)
	for range l.ps.Channel() {
		signal(l.ch)
	}
}

func (l *redisListener) C() <-chan struct{} { return l.ch }

func (l *redisListener) Close() error {
	l.once.Do(func() {
		l.err = l.ps.Close()
		<-l.done
	})
	return l.err
}
