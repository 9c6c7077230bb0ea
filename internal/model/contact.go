package model

import (
	"github.com/abgdnv/meiasjamais/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Contact struct {
	ID       bson.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	Name     string        `json:"name" bson:"name"`
	UserName string        `json:"user_name" bson:"user_name"`
	ImageURL *string       `json:"image_url,omitempty" bson:"image_url,omitempty"`
}

var ContactDescriptor = store.NewDescriptor[Contact]("Contact")
