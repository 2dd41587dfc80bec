package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pageza/larder/backend/internal/model"
)

// FirestoreStore keeps documents in Cloud Firestore. Subscriptions use
// Firestore's own snapshot listeners, so no broker is involved.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	return &FirestoreStore{client: client, logger: logger, now: time.Now}
}

func (s *FirestoreStore) Recipes(uid string) (Collection[model.Recipe], error) {
	return newFirestoreCollection[model.Recipe, *model.Recipe](s, uid)
}

func (s *FirestoreStore) GroceryLists(uid string) (Collection[model.GroceryList], error) {
	return newFirestoreCollection[model.GroceryList, *model.GroceryList](s, uid)
}

type firestoreCollection[T any, PT Document[T]] struct {
	s    *FirestoreStore
	uid  string
	name string
	col  *firestore.CollectionRef
}

func newFirestoreCollection[T any, PT Document[T]](s *FirestoreStore, uid string) (*firestoreCollection[T, PT], error) {
	if uid == "" {
		return nil, ErrNoOwner
	}
	name := PT(new(T)).CollectionName()
	return &firestoreCollection[T, PT]{
		s:    s,
		uid:  uid,
		name: name,
		col:  s.client.Collection("users").Doc(uid).Collection(name),
	}, nil
}

func (c *firestoreCollection[T, PT]) Path() string { return CollectionPath(c.uid, c.name) }

func (c *firestoreCollection[T, PT]) decode(snap *firestore.DocumentSnapshot) (*T, error) {
	var doc T
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	p := PT(&doc)
	p.SetDocID(snap.Ref.ID)
	if err := p.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

func (c *firestoreCollection[T, PT]) wrap(op, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf("store: %s %s: %w", op, DocumentPath(c.uid, c.name, id), err)
}

func (c *firestoreCollection[T, PT]) Create(ctx context.Context, doc *T) (string, error) {
	p := PT(doc)
	ref := c.col.NewDoc()
	if p.DocID() != "" {
		ref = c.col.Doc(p.DocID())
	}
	p.SetDocID(ref.ID)
	p.SetOwner(c.uid)
	p.Stamp(c.s.now())
	if err := p.Normalize(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", c.wrap("create", ref.ID, err)
	}
	return ref.ID, nil
}

func (c *firestoreCollection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	snap, err := c.col.Doc(id).Get(ctx)
	if err != nil {
		return nil, c.wrap("get", id, err)
	}
	return c.decode(snap)
}

func (c *firestoreCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	return c.collect(c.col.OrderBy("createdAt", firestore.Desc).Documents(ctx))
}

func (c *firestoreCollection[T, PT]) collect(it *firestore.DocumentIterator) ([]T, error) {
	defer it.Stop()
	out := []T{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("store: list %s: %w", c.Path(), err)
		}
		doc, err := c.decode(snap)
		if err != nil {
			c.s.logger.Warn("skipping invalid document", zap.String("collection", c.Path()), zap.Error(err))
			continue
		}
		out = append(out, *doc)
	}
}

func (c *firestoreCollection[T, PT]) updates(fields Fields) []firestore.Update {
	ups := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		ups = append(ups, firestore.Update{Path: k, Value: v})
	}
	return append(ups, firestore.Update{Path: "updatedAt", Value: c.s.now()})
}

func (c *firestoreCollection[T, PT]) Update(ctx context.Context, id string, fields Fields) error {
	if err := checkFields(c.name, fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	if _, err := c.col.Doc(id).Update(ctx, c.updates(fields)); err != nil {
		return c.wrap("update", id, err)
	}
	return nil
}

func (c *firestoreCollection[T, PT]) Mutate(ctx context.Context, id string, fn func(doc *T) (Fields, error)) error {
	ref := c.col.Doc(id)
	return c.s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return c.wrap("get", id, err)
		}
		doc, err := c.decode(snap)
		if err != nil {
			return err
		}
		fields, err := fn(doc)
		if err != nil {
			return err
		}
		if err := checkFields(c.name, fields); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Update(ref, c.updates(fields))
	})
}

func (c *firestoreCollection[T, PT]) Delete(ctx context.Context, id string) error {
	if _, err := c.col.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return c.wrap("delete", id, err)
	}
	return nil
}

func (c *firestoreCollection[T, PT]) SubscribeAll(ctx context.Context) (*Subscription[[]T], error) {
	sub, subCtx := newSubscription[[]T](ctx)
	it := c.col.OrderBy("createdAt", firestore.Desc).Snapshots(subCtx)
	sub.start(subCtx, func(ctx context.Context) error {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return nil
				}
				return fmt.Errorf("store: listen %s: %w", c.Path(), err)
			}
			docs, err := c.collect(qs.Documents)
			if err != nil {
				return err
			}
			if !sub.deliver(ctx, docs) {
				return nil
			}
		}
	})
	return sub, nil
}

func (c *firestoreCollection[T, PT]) Subscribe(ctx context.Context, id string) (*Subscription[Snapshot[T]], error) {
	sub, subCtx := newSubscription[Snapshot[T]](ctx)
	it := c.col.Doc(id).Snapshots(subCtx)
	sub.start(subCtx, func(ctx context.Context) error {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return nil
				}
				return fmt.Errorf("store: listen %s: %w", DocumentPath(c.uid, c.name, id), err)
			}
			next := Snapshot[T]{}
			if snap.Exists() {
				doc, err := c.decode(snap)
				if err != nil {
					return err
				}
				next = Snapshot[T]{Doc: doc, Found: true}
			}
			if !sub.deliver(ctx, next) {
				return nil
			}
		}
	})
	return sub, nil
}
