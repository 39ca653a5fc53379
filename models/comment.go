package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment supports one level of reply nesting via ParentID. IsAuthor
// records whether the commenter was the post's author at creation time
// and is never recomputed.
type Comment struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Body        string              `bson:"body" json:"body"`
	ParentID    *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	LikeCount   int64               `bson:"likeCount" json:"likeCount"`
	IsAuthor    bool                `bson:"isAuthor" json:"isAuthor"`
	FromUser    primitive.ObjectID  `bson:"fromUser" json:"fromUser"`
	ReplyToUser *primitive.ObjectID `bson:"replyToUser,omitempty" json:"replyToUser,omitempty"`
	Post        primitive.ObjectID  `bson:"post" json:"post"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
