package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/meiasjamais/internal/errors"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type collectionOpts struct {
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// Option configures a Collection.
type Option func(*collectionOpts)

// WithTimeout bounds every store round-trip made by the collection.
// Zero or negative values leave calls bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *collectionOpts) {
		o.timeout = d
	}
}

// WithCircuitBreaker routes every store round-trip through cb. While cb is open, calls fail fast with ErrStore.
// Collections of the same database should share one breaker.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker[any]) Option {
	return func(o *collectionOpts) {
		o.breaker = cb
	}
}

// Collection performs typed CRUD against the collection named by its descriptor.
// It holds no mutable state and is safe for concurrent use.
type Collection[T any] struct {
	coll *mongo.Collection
	desc Descriptor[T]
	opts collectionOpts
}

// NewCollection binds desc to its collection in db. It performs no I/O.
func NewCollection[T any](db *mongo.Database, desc Descriptor[T], opts ...Option) *Collection[T] {
	c := &Collection[T]{
		coll: db.Collection(desc.Collection),
		desc: desc,
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Name returns the name of the bound collection.
func (c *Collection[T]) Name() string {
	return c.desc.Collection
}

// Index returns every document of the collection in store iteration order.
func (c *Collection[T]) Index(ctx context.Context) ([]T, error) {
	return c.Find(ctx, nil)
}

// Find returns the documents matching filter. A nil filter matches every document.
// The call fails as a whole on the first document that cannot be decoded.
func (c *Collection[T]) Find(ctx context.Context, filter Filter) ([]T, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var cursor *mongo.Cursor
	err := c.opts.guard(func() (err error) {
		cursor, err = c.coll.Find(ctx, matchAll(filter))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find in %s: %w", perrors.ErrStore, c.Name(), err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	entities := make([]T, 0)
	for cursor.Next(ctx) {
		entity, err := c.desc.Decode(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("%w: %s document %s: %w", perrors.ErrDecode, c.Name(), cursor.Current.Lookup("_id"), err)
		}
		entities = append(entities, entity)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", perrors.ErrStore, c.Name(), err)
	}
	return entities, nil
}

// Count returns the number of documents matching filter. A nil filter counts the whole collection.
func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var count int64
	err := c.opts.guard(func() (err error) {
		count, err = c.coll.CountDocuments(ctx, matchAll(filter))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count in %s: %w", perrors.ErrStore, c.Name(), err)
	}
	return count, nil
}

// FindByID returns the document with the given identifier.
// Returns ErrNotFound if no document matches and ErrDecode if the stored document does not fit T.
func (c *Collection[T]) FindByID(ctx context.Context, id bson.ObjectID) (T, error) {
	var zero T
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var raw bson.Raw
	err := c.opts.guard(func() (err error) {
		raw, err = c.coll.FindOne(ctx, byID(id)).Raw()
		return err
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, fmt.Errorf("%w: %s %s", perrors.ErrNotFound, c.Name(), id.Hex())
		}
		return zero, fmt.Errorf("%w: find %s %s: %w", perrors.ErrStore, c.Name(), id.Hex(), err)
	}
	entity, err := c.desc.Decode(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %s: %w", perrors.ErrDecode, c.Name(), id.Hex(), err)
	}
	return entity, nil
}

// Create inserts entity as a new document and returns the identifier assigned by the store.
// The encoded entity must not carry an _id.
func (c *Collection[T]) Create(ctx context.Context, entity T) (bson.ObjectID, error) {
	doc, err := c.desc.Encode(entity)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: new %s document: %w", perrors.ErrEncode, c.Name(), err)
	}
	if _, err := doc.LookupErr("_id"); err == nil {
		return bson.NilObjectID, fmt.Errorf("%w: new %s document already has an _id", perrors.ErrInvalidID, c.Name())
	}

	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var res *mongo.InsertOneResult
	err = c.opts.guard(func() (err error) {
		res, err = c.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: insert into %s: %w", perrors.ErrStore, c.Name(), err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return bson.NilObjectID, fmt.Errorf("%w: insert into %s returned %T identifier", perrors.ErrStore, c.Name(), res.InsertedID)
	}
	return id, nil
}

// DeleteOne removes at most one document matching filter and returns the number removed.
func (c *Collection[T]) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var res *mongo.DeleteResult
	err := c.opts.guard(func() (err error) {
		res, err = c.coll.DeleteOne(ctx, matchAll(filter))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: delete one from %s: %w", perrors.ErrStore, c.Name(), err)
	}
	return res.DeletedCount, nil
}

// Delete removes every document matching filter and returns the number removed.
func (c *Collection[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var res *mongo.DeleteResult
	err := c.opts.guard(func() (err error) {
		res, err = c.coll.DeleteMany(ctx, matchAll(filter))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: delete from %s: %w", perrors.ErrStore, c.Name(), err)
	}
	return res.DeletedCount, nil
}

// DeleteByID removes the document with the given identifier.
// Deleting an identifier that does not exist is not an error and returns 0.
func (c *Collection[T]) DeleteByID(ctx context.Context, id bson.ObjectID) (int64, error) {
	return c.DeleteOne(ctx, byID(id))
}

func (o *collectionOpts) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

func (o *collectionOpts) guard(call func() error) error {
	if o.breaker == nil {
		return call()
	}
	_, err := o.breaker.Execute(func() (any, error) {
		return nil, call()
	})
	return err
}

// IsSuccessful reports whether err leaves the store healthy as far as a circuit breaker is concerned.
// A missing document and a caller that gave up are not store failures.
func IsSuccessful(err error) bool {
	return err == nil || errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, context.Canceled)
}

func byID(id bson.ObjectID) Filter {
	return Filter{{Key: "_id", Value: id}}
}

// matchAll substitutes the empty filter for nil, which the driver rejects.
func matchAll(filter Filter) Filter {
	if filter == nil {
		return Filter{}
	}
	return filter
}
