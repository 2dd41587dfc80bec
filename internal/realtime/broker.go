// Package realtime fans out "something changed" notifications for a topic
// to every listener of that topic. Notifications carry no payload: listeners
// reload the full state they care about.
package realtime

import "context"

// Broker publishes and delivers change notifications.
type Broker interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string) (Listener, error)
}

// Listener receives notifications for one topic. Bursts of notifications may
// be coalesced into a single receive.
type Listener interface {
	C() <-chan struct{}
	Close() error
}

// signal performs a non-blocking send on a buffered(1) channel, folding
// pending notifications together.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
