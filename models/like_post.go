package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikePost is a fact record: its existence is the liked state.
type LikePost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
