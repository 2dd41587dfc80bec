// Package state is an explicit client-state container mirroring a document
// collection. Each action has one transition; Reduce never mutates its input.
package state

import (
	"sync"
)

// State is the mirrored view of one collection and the document in focus.
type State[T any] struct {
	Items   []T    `json:"items"`
	Current *T     `json:"current"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Action is one of SetAll, SetCurrent, Add, Update, Remove, SetLoading or SetError.
type Action[T any] interface {
	apply(s State[T], id func(T) string) State[T]
}

// SetAll replaces the items with a fresh snapshot and clears loading and error.
type SetAll[T any] struct{ Items []T }

// SetCurrent focuses a document, or clears the focus when Item is nil.
type SetCurrent[T any] struct{ Item *T }

// Add puts a new document first, matching newest-first ordering.
type Add[T any] struct{ Item T }

// Update replaces the document with the same id, and the focus if it is that
// document. Unknown ids change nothing.
type Update[T any] struct{ Item T }

// Remove drops the document with ID and clears the focus if it was that document.
type Remove[T any] struct{ ID string }

type SetLoading[T any] struct{ Loading bool }

// SetError records a failure and stops loading. An empty message clears it.
type SetError[T any] struct{ Message string }

func (a SetAll[T]) apply(s State[T], _ func(T) string) State[T] {
	s.Items = append([]T{}, a.Items...)
	s.Loading = false
	s.Error = ""
	return s
}

func (a SetCurrent[T]) apply(s State[T], _ func(T) string) State[T] {
	s.Current = clone(a.Item)
	return s
}

func (a Add[T]) apply(s State[T], _ func(T) string) State[T] {
	items := make([]T, 0, len(s.Items)+1)
	items = append(items, a.Item)
	s.Items = append(items, s.Items...)
	return s
}

func (a Update[T]) apply(s State[T], id func(T) string) State[T] {
	key := id(a.Item)
	for i := range s.Items {
		if id(s.Items[i]) != key {
			continue
		}
		items := append([]T{}, s.Items...)
		items[i] = a.Item
		s.Items = items
		if s.Current != nil && id(*s.Current) == key {
			s.Current = clone(&a.Item)
		}
		return s
	}
	return s
}

func (a Remove[T]) apply(s State[T], id func(T) string) State[T] {
	items := make([]T, 0, len(s.Items))
	for _, it := range s.Items {
		if id(it) != a.ID {
			items = append(items, it)
		}
	}
	s.Items = items
	if s.Current != nil && id(*s.Current) == a.ID {
		s.Current = nil
	}
	return s
}

func (a SetLoading[T]) apply(s State[T], _ func(T) string) State[T] {
	s.Loading = a.Loading
	return s
}

func (a SetError[T]) apply(s State[T], _ func(T) string) State[T] {
	s.Error = a.Message
	s.Loading = false
	return s
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Reduce returns the state after applying a.
func Reduce[T any](s State[T], a Action[T], id func(T) string) State[T] {
	return a.apply(s, id)
}

// Slice holds one State and serializes dispatches.
type Slice[T any] struct {
	mu    sync.Mutex
	state State[T]
	id    func(T) string
}

func NewSlice[T any](id func(T) string) *Slice[T] {
	return &Slice[T]{state: State[T]{Items: []T{}}, id: id}
}

// Dispatch applies a and returns the resulting state.
func (s *Slice[T]) Dispatch(a Action[T]) State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a, s.id)
	return s.state
}

func (s *Slice[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
