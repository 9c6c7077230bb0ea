// Package store provides typed access to the MongoDB collections backing each entity.
package store

import (
	"fmt"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/meiasjamais/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document is the schema-less form of an entity exchanged with the driver.
type Document = bson.Raw

// Filter is a query expression in MongoDB's native query language.
type Filter = bson.D

// Descriptor binds an entity type to its collection and its document codec.
type Descriptor[T any] struct {
	// Collection is the name of the backing collection.
	Collection string

	// Encode converts an entity into a document.
	Encode func(T) (Document, error)

	// Decode converts a document into an entity. It must not retain doc after returning,
	// the driver reuses cursor buffers.
	Decode func(doc Document) (T, error)

	// Required lists the key paths every stored document must carry.
	Required []string
}

// NewDescriptor returns a descriptor for the entity named typeName that uses the BSON struct-tag codec.
// Decoding rejects documents that lack a non-optional field instead of zero-filling it.
func NewDescriptor[T any](typeName string) Descriptor[T] {
	required := RequiredFields(reflect.TypeFor[T](), "bson")
	return Descriptor[T]{
		Collection: CollectionName(typeName),
		Encode:     MarshalDocument[T],
		Decode: func(doc Document) (T, error) {
			if err := CheckRequired(doc, required); err != nil {
				var zero T
				return zero, err
			}
			return UnmarshalDocument[T](doc)
		},
		Required: required,
	}
}

// CollectionName derives the collection name from an entity's type name: "Post" is stored in "posts".
func CollectionName(typeName string) string {
	return strings.ToLower(typeName) + "s"
}

// MarshalDocument encodes entity with its bson struct tags.
func MarshalDocument[T any](entity T) (Document, error) {
	data, err := bson.Marshal(entity)
	if err != nil {
		return nil, err
	}
	return Document(data), nil
}

// UnmarshalDocument decodes doc into a new T.
func UnmarshalDocument[T any](doc Document) (T, error) {
	var entity T
	if err := bson.Unmarshal(doc, &entity); err != nil {
		return entity, err
	}
	return entity, nil
}

// ParseID parses the 24-character hexadecimal form of an identifier.
// It never touches the store.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w %q: %w", perrors.ErrInvalidID, hex, err)
	}
	return id, nil
}
