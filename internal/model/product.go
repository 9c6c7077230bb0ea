// Package model defines the documents served by the feed service and binds each one to its collection.
package model

import (
	"github.com/abgdnv/meiasjamais/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is an item shown in the feed.
type Product struct {
	ID              bson.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	Category        string        `json:"category" bson:"category"`
	Description     string        `json:"description" bson:"description"`
	ImageURL        *string       `json:"image_url" bson:"image_url,omitempty"`
	URL             string        `json:"url" bson:"url"`
	CommentaryCount int32         `json:"comentary_count" bson:"comentary_count"`
	LikeCount       int32         `json:"like_count" bson:"like_count"`
	Received        bool          `json:"received" bson:"received"`
}

// ProductDescriptor stores products in the "products" collection.
var ProductDescriptor = store.NewDescriptor[Product]("Product")
