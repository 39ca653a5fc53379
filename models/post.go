package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusReEditor  PostStatus = "RE_EDITOR"
	StatusPublished PostStatus = "PUBLISHED"
)

// Post is one lifecycle stage of an article. PostID is the stable
// identifier shared by a PUBLISHED document and its RE_EDITOR sibling;
// ID is unique per document.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    string             `bson:"postId" json:"postId"`
	Status    PostStatus         `bson:"status" json:"status"`
	HeaderBg  string             `bson:"headerBg" json:"headerBg"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Category  string             `bson:"category" json:"category"`
	Tags      []string           `bson:"tags" json:"tags"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Read      int64              `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
