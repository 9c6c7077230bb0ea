package store

import (
	"context"
	"fmt"
	"slices"

	perrors "github.com/abgdnv/meiasjamais/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Catalog describes the database that holds the collections.
type Catalog struct {
	db   *mongo.Database
	opts collectionOpts
}

// NewCatalog binds db. It accepts the same options as NewCollection and performs no I/O.
func NewCatalog(db *mongo.Database, opts ...Option) *Catalog {
	c := &Catalog{db: db}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// CollectionNames returns the names of every collection in the database, sorted.
func (c *Catalog) CollectionNames(ctx context.Context) ([]string, error) {
	ctx, cancel := c.opts.withTimeout(ctx)
	defer cancel()

	var names []string
	err := c.opts.guard(func() (err error) {
		names, err = c.db.ListCollectionNames(ctx, bson.D{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list collections of %s: %w", perrors.ErrStore, c.db.Name(), err)
	}
	slices.Sort(names)
	return names, nil
}
