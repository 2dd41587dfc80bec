// Package store is the per-user document store behind recipes and grocery
// lists. Documents live under users/{uid}/{collection}/{id}; every read is
// validated before it reaches callers and every write replaces whole fields.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/larder/backend/internal/model"
)

var (
	// ErrNotFound is returned when a document does not exist for the user.
	ErrNotFound = errors.New("store: document not found")
	// ErrInvalidDocument is returned when a stored document fails validation.
	ErrInvalidDocument = errors.New("store: invalid document")
	// ErrNoOwner is returned when a collection is requested without a uid.
	ErrNoOwner = errors.New("store: missing owner uid")
	// ErrFieldNotWritable is returned for updates outside a collection's mutable fields.
	ErrFieldNotWritable = errors.New("store: field not writable")
)

// Fields is a set of whole-field overwrites keyed by field name.
type Fields map[string]any

// Document is implemented by pointers to the stored document types.
type Document[T any] interface {
	*T
	CollectionName() string
	DocID() string
	SetDocID(id string)
	SetOwner(uid string)
	Stamp(now time.Time)
	Normalize() error
}

// Snapshot is the state of a single document at one point in time.
type Snapshot[T any] struct {
	Doc   *T
	Found bool
}

// Collection is one user's collection of documents of type T.
type Collection[T any] interface {
	// Path is users/{uid}/{collection}.
	Path() string
	Create(ctx context.Context, doc *T) (string, error)
	Get(ctx context.Context, id string) (*T, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id string, fields Fields) error
	// Mutate reads the document, hands it to fn and writes the returned
	// fields atomically. Returning no fields skips the write.
	Mutate(ctx context.Context, id string, fn func(doc *T) (Fields, error)) error
	Delete(ctx context.Context, id string) error
	SubscribeAll(ctx context.Context) (*Subscription[[]T], error)
	Subscribe(ctx context.Context, id string) (*Subscription[Snapshot[T]], error)
}

// Store hands out per-user collections.
type Store interface {
	Recipes(uid string) (Collection[model.Recipe], error)
	GroceryLists(uid string) (Collection[model.GroceryList], error)
}

var mutableFields = map[string]map[string]bool{
	model.Recipe{}.CollectionName():      {"name": true, "ingredients": true, "steps": true},
	model.GroceryList{}.CollectionName(): {"name": true, "items": true},
}

func checkFields(collection string, fields Fields) error {
	allowed := mutableFields[collection]
	for k := range fields {
		if !allowed[k] {
			return fmt.Errorf("%w: %s.%s", ErrFieldNotWritable, collection, k)
		}
	}
	return nil
}

// CollectionPath returns users/{uid}/{collection}.
func CollectionPath(uid, collection string) string {
	return "users/" + uid + "/" + collection
}

// DocumentPath returns users/{uid}/{collection}/{id}.
func DocumentPath(uid, collection, id string) string {
	return CollectionPath(uid, collection) + "/" + id
}
