package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActiveType string

const (
	ActiveCollectionPost ActiveType = "COLLECTION"
	ActiveComment        ActiveType = "COMMENT"
	ActiveFollow         ActiveType = "FOLLOW"
	ActiveLikePost       ActiveType = "LIKE_POST"
	ActivePublish        ActiveType = "PUBLISH"
)

// Activity is a tagged union: exactly one of the reference fields is
// set, selected by ActiveType. User is always the acting user.
type Activity struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User           primitive.ObjectID  `bson:"user" json:"user"`
	ActiveType     ActiveType          `bson:"activeType" json:"activeType"`
	CollectionPost *primitive.ObjectID `bson:"collectionPost,omitempty" json:"collectionPost,omitempty"`
	AddComment     *primitive.ObjectID `bson:"addComment,omitempty" json:"addComment,omitempty"`
	FollowAuthor   *primitive.ObjectID `bson:"followAuthor,omitempty" json:"followAuthor,omitempty"`
	LikePost       *primitive.ObjectID `bson:"likePost,omitempty" json:"likePost,omitempty"`
	Publish        *primitive.ObjectID `bson:"publish,omitempty" json:"publish,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}
