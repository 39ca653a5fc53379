// Package store defines the repositories the services run on. Mongo
// implementations live in this package; store/memory carries an
// in-memory implementation used by the service tests.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/models"
)

// ErrNotFound is returned by every Find* method when no document
// matches. Services translate it into their own NotFound errors.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned by PostStore.Insert when a document with the
// same (postId, status) pair already exists. At most one PUBLISHED and
// one RE_EDITOR document may share a stable postId; the caller re-reads
// the winning sibling instead of keeping its own copy.
var ErrDuplicate = errors.New("store: duplicate")

// PostUpdate lists the fields Update may change; nil means untouched.
type PostUpdate struct {
	HeaderBg  *string
	Title     *string
	Body      *string
	Category  *string
	Tags      *[]string
	Status    *models.PostStatus
	UpdatedAt *time.Time
}

type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// FindSibling resolves the at-most-one document sharing the stable
	// postId with the given status.
	FindSibling(ctx context.Context, postID string, status models.PostStatus) (*models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, upd PostUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncRead(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, status models.PostStatus, pageNo, pageSize int64) ([]models.Post, int64, error)
}

type PostImageStore interface {
	Find(ctx context.Context, postDocID primitive.ObjectID) (*models.PostImage, error)
	// Upsert replaces the image list wholesale, creating the record if
	// absent.
	Upsert(ctx context.Context, postDocID primitive.ObjectID, imageList []string) error
	// AddImage appends one asset name, creating the record lazily on
	// first upload.
	AddImage(ctx context.Context, postDocID primitive.ObjectID, name string) error
	Delete(ctx context.Context, postDocID primitive.ObjectID) error
}

type LikePostStore interface {
	Find(ctx context.Context, user, post primitive.ObjectID) (*models.LikePost, error)
	Insert(ctx context.Context, l *models.LikePost) error
	Delete(ctx context.Context, user, post primitive.ObjectID) error
	CountByPost(ctx context.Context, post primitive.ObjectID) (int64, error)
	ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.LikePost, error)
	DeleteByPost(ctx context.Context, post primitive.ObjectID) error
}

type CollectionStore interface {
	Find(ctx context.Context, user, post primitive.ObjectID) (*models.Collection, error)
	Insert(ctx context.Context, col *models.Collection) error
	Delete(ctx context.Context, user, post primitive.ObjectID) error
	ListByUser(ctx context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Collection, int64, error)
	DeleteByPost(ctx context.Context, post primitive.ObjectID) error
}

type FollowStore interface {
	Find(ctx context.Context, from, to primitive.ObjectID) (*models.Follow, error)
	Insert(ctx context.Context, f *models.Follow) error
	Delete(ctx context.Context, from, to primitive.ObjectID) error
}

type CommentStore interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, post primitive.ObjectID) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]models.Comment, error)
	CountByPost(ctx context.Context, post primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, post primitive.ObjectID) error
}

type ActivityStore interface {
	Insert(ctx context.Context, a *models.Activity) error
	ListByUser(ctx context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Activity, int64, error)
	DeleteLike(ctx context.Context, user, post primitive.ObjectID) error
	DeleteCollection(ctx context.Context, user, post primitive.ObjectID) error
	DeleteFollow(ctx context.Context, from, to primitive.ObjectID) error
	DeleteByComment(ctx context.Context, comment primitive.ObjectID) error
	// DeleteByPost removes every publish/like/collection activity
	// referencing the post document.
	DeleteByPost(ctx context.Context, post primitive.ObjectID) error
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type VerifyCodeStore interface {
	Insert(ctx context.Context, v *models.VerifyCode) error
	FindByEmail(ctx context.Context, email string) (*models.VerifyCode, error)
}

// Stores bundles every repository for injection into the services.
type Stores struct {
	Posts       PostStore
	PostImages  PostImageStore
	Likes       LikePostStore
	Collections CollectionStore
	Follows     FollowStore
	Comments    CommentStore
	Activities  ActivityStore
	Users       UserStore
	VerifyCodes VerifyCodeStore
}

// PageCount computes the page envelope's pageCount label.
func PageCount(total, pageSize int64) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
