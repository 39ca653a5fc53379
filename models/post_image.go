package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostImage lists the image assets referenced by one post document's
// body/headerBg. PostID holds the owning document's own _id, not the
// stable postId: image lists are per-document, and the RE_EDITOR clone
// and publish-collapse paths re-key the record explicitly.
type PostImage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	ImageList []string           `bson:"imageList" json:"imageList"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
