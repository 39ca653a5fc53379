package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow marks FollowFrom following FollowTo.
type Follow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowFrom primitive.ObjectID `bson:"followFrom" json:"followFrom"`
	FollowTo   primitive.ObjectID `bson:"followTo" json:"followTo"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
