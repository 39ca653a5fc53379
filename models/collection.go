package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection marks a post saved by a user.
type Collection struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
