package realtime

import (
	"context"
	"sync"
)

// Hub is an in-process Broker. It is enough when a single API instance
// serves every client.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]map[*hubListener]struct{}
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[*hubListener]struct{})}
}

func (h *Hub) Publish(_ context.Context, topic string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for l := range h.listeners[topic] {
		signal(l.ch)
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, topic string) (Listener, error) {
	l := &hubListener{hub: h, topic: topic, ch: make(chan struct{}, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.listeners[topic]
	if !ok {
		set = make(map[*hubListener]struct{})
		h.listeners[topic] = set
	}
	set[l] = struct{}{}
	return l, nil
}

// Listeners returns the number of open listeners on topic.
func (h *Hub) Listeners(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[topic])
}

func (h *Hub) remove(l *hubListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.listeners[l.topic]
	delete(set, l)
	if len(set) == 0 {
		delete(h.listeners, l.topic)
	}
}

type hubListener struct {
	hub   *Hub
	topic string
	ch    chan struct{}
	once  sync.Once
}

func (l *hubListener) C() <-chan struct{} { return l.ch }

func (l *hubListener) Close() error {
	l.once.Do(func() { l.hub.remove(l) })
	return nil
}
