package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/realtime"
)

// SQLStore keeps documents in SQL tables through gorm and announces every
// write on a realtime.Broker so subscribers can reload.
type SQLStore struct {
	db     *gorm.DB
	broker realtime.Broker
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLStore(db *gorm.DB, broker realtime.Broker, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, broker: broker, logger: logger, now: time.Now}
}

func (s *SQLStore) Recipes(uid string) (Collection[model.Recipe], error) {
	return newGormCollection[model.Recipe, *model.Recipe](s, uid)
}

func (s *SQLStore) GroceryLists(uid string) (Collection[model.GroceryList], error) {
	return newGormCollection[model.GroceryList, *model.GroceryList](s, uid)
}

type gormCollection[T any, PT Document[T]] struct {
	s    *SQLStore
	uid  string
	name string
}

func newGormCollection[T any, PT Document[T]](s *SQLStore, uid string) (*gormCollection[T, PT], error) {
	if uid == "" {
		return nil, ErrNoOwner
	}
	return &gormCollection[T, PT]{s: s, uid: uid, name: PT(new(T)).CollectionName()}, nil
}

func (c *gormCollection[T, PT]) Path() string { return CollectionPath(c.uid, c.name) }

func (c *gormCollection[T, PT]) owned(db *gorm.DB, id string) *gorm.DB {
	return db.Where("user_id = ? AND id = ?", c.uid, id)
}

func (c *gormCollection[T, PT]) Create(ctx context.Context, doc *T) (string, error) {
	p := PT(doc)
	if p.DocID() == "" {
		p.SetDocID(model.NewID())
	}
	p.SetOwner(c.uid)
	p.Stamp(c.s.now())
	if err := p.Normalize(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := c.s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", fmt.Errorf("store: create %s: %w", c.name, err)
	}
	c.publish(ctx, p.DocID())
	return p.DocID(), nil
}

func (c *gormCollection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	return c.get(c.s.db.WithContext(ctx), id)
}

func (c *gormCollection[T, PT]) get(db *gorm.DB, id string) (*T, error) {
	var doc T
	if err := c.owned(db, id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s: %w", DocumentPath(c.uid, c.name, id), err)
	}
	if err := PT(&doc).Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

func (c *gormCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	var docs []T
	err := c.s.db.WithContext(ctx).
		Where("user_id = ?", c.uid).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", c.Path(), err)
	}
	out := make([]T, 0, len(docs))
	for i := range docs {
		if err := PT(&docs[i]).Normalize(); err != nil {
			c.s.logger.Warn("skipping invalid document", zap.String("collection", c.Path()), zap.Error(err))
			continue
		}
		out = append(out, docs[i])
	}
	return out, nil
}

func (c *gormCollection[T, PT]) Update(ctx context.Context, id string, fields Fields) error {
	if err := checkFields(c.name, fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	if err := c.update(c.s.db.WithContext(ctx), id, fields); err != nil {
		return err
	}
	c.publish(ctx, id)
	return nil
}

func (c *gormCollection[T, PT]) update(db *gorm.DB, id string, fields Fields) error {
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = c.s.now()
	res := c.owned(db.Model(new(T)), id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("store: update %s: %w", DocumentPath(c.uid, c.name, id), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *gormCollection[T, PT]) Mutate(ctx context.Context, id string, fn func(doc *T) (Fields, error)) error {
	wrote := false
	err := c.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		doc, err := c.get(q, id)
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
		wrote = true
		return c.update(tx, id, fields)
	})
	if err != nil {
		return err
	}
	if wrote {
		c.publish(ctx, id)
	}
	return nil
}

func (c *gormCollection[T, PT]) Delete(ctx context.Context, id string) error {
	res := c.owned(c.s.db.WithContext(ctx), id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("store: delete %s: %w", DocumentPath(c.uid, c.name, id), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	c.publish(ctx, id)
	return nil
}

func (c *gormCollection[T, PT]) SubscribeAll(ctx context.Context) (*Subscription[[]T], error) {
	l, err := c.s.broker.Subscribe(ctx, c.Path())
	if err != nil {
		return nil, fmt.Errorf("store: subscribe %s: %w", c.Path(), err)
	}
	sub, subCtx := newSubscription[[]T](ctx)
	sub.start(subCtx, func(ctx context.Context) error {
		defer l.Close()
		for {
			docs, err := c.List(ctx)
			if err != nil {
				return err
			}
			if !sub.deliver(ctx, docs) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-l.C():
			}
		}
	})
	return sub, nil
}

func (c *gormCollection[T, PT]) Subscribe(ctx context.Context, id string) (*Subscription[Snapshot[T]], error) {
	topic := DocumentPath(c.uid, c.name, id)
	l, err := c.s.broker.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("store: subscribe %s: %w", topic, err)
	}
	sub, subCtx := newSubscription[Snapshot[T]](ctx)
	sub.start(subCtx, func(ctx context.Context) error {
		defer l.Close()
		for {
			doc, err := c.Get(ctx, id)
			switch {
			case errors.Is(err, ErrNotFound):
				if !sub.deliver(ctx, Snapshot[T]{}) {
					return nil
				}
			case err != nil:
				return err
			default:
				if !sub.deliver(ctx, Snapshot[T]{Doc: doc, Found: true}) {
					return nil
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-l.C():
			}
		}
	})
	return sub, nil
}

// publish announces a change to collection and document listeners. The write
// has already happened, so failures are only logged.
func (c *gormCollection[T, PT]) publish(ctx context.Context, id string) {
	for _, topic := range []string{c.Path(), DocumentPath(c.uid, c.name, id)} {
		if err := c.s.broker.Publish(ctx, topic); err != nil {
			c.s.logger.Error("publish change", zap.String("topic", topic), zap.Error(err))
		}
	}
}
