package store

import (
	"context"
	"sync"
)

// Subscription delivers full snapshots until it is cancelled or fails.
// Only the most recent snapshot is buffered: a slow reader skips
// intermediate states but always sees the latest one.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription[T any](ctx context.Context) (*Subscription[T], context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}, ctx
}

// Updates is closed once the subscription has ended.
func (s *Subscription[T]) Updates() <-chan T { return s.updates }

// Done is closed once the producer has stopped.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Err reports why the subscription ended. It is nil after a cancel.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription and waits for its producer to exit. It is
// safe to call more than once and from several goroutines.
func (s *Subscription[T]) Cancel() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) start(ctx context.Context, produce func(ctx context.Context) error) {
	go func() {
		defer close(s.done)
		defer close(s.updates)
		defer s.cancel()
		if err := produce(ctx); err != nil && ctx.Err() == nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()
}

// deliver replaces any unread snapshot with v. It reports false once ctx is done.
func (s *Subscription[T]) deliver(ctx context.Context, v T) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case s.updates <- v:
			return true
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}
