package model

import (
	"github.com/abgdnv/meiasjamais/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Post is a user's publication about a product. The product is embedded, not referenced.
type Post struct {
	ID        bson.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	UserImage *string       `json:"user_image" bson:"user_image,omitempty"`
	UserName  string        `json:"user_name" bson:"user_name"`
	Product   Product       `json:"product" bson:"product"`
}

var PostDescriptor = store.NewDescriptor[Post]("Post")
