// Package comments implements commenting with one level of reply
// nesting and the asymmetric delete rules: a top-level comment may be
// removed by its author or the post's author, a reply only by the
// parent comment's author.
package comments

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/errs"
	"simplog/models"
	"simplog/store"
)

type Service struct {
	posts      store.PostStore
	comments   store.CommentStore
	activities store.ActivityStore
}

func NewService(s store.Stores) *Service {
	return &Service{posts: s.Posts, comments: s.Comments, activities: s.Activities}
}

type CreateInput struct {
	Body        string
	ParentID    *primitive.ObjectID
	ReplyToUser *primitive.ObjectID
}

// Create attaches a comment to a post. IsAuthor is computed once here
// and never recomputed, even if the post changes hands.
func (s *Service) Create(ctx context.Context, postDocID primitive.ObjectID, in CreateInput, actor primitive.ObjectID) (*models.Comment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, errs.Validation("Body must not be empty", map[string]string{"body": "Body must not be empty"})
	}

	post, err := s.posts.FindByID(ctx, postDocID)
	if err == store.ErrNotFound {
		return nil, errs.NotFound("Post not found")
	}
	if err != nil {
		return nil, err
	}

	replyTo := in.ReplyToUser
	if in.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *in.ParentID)
		if err == store.ErrNotFound {
			return nil, errs.NotFound("Comment not found")
		}
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, errs.Validation("Replies cannot be nested", map[string]string{
				"parentId": "Replies cannot be nested",
			})
		}
		if parent.Post != postDocID {
			return nil, errs.NotFound("Comment not found")
		}
		if replyTo == nil {
			replyTo = &parent.FromUser
		}
	}

	now := time.Now()
	c := &models.Comment{
		ID:          primitive.NewObjectID(),
		Body:        in.Body,
		ParentID:    in.ParentID,
		IsAuthor:    actor == post.Author,
		FromUser:    actor,
		ReplyToUser: replyTo,
		Post:        postDocID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, err
	}

	act := &models.Activity{
		User:       actor,
		ActiveType: models.ActiveComment,
		AddComment: &c.ID,
		CreatedAt:  now,
	}
	if err := s.activities.Insert(ctx, act); err != nil {
		log.Printf("[Comments] record activity %s: %v", c.ID.Hex(), err)
	}
	return c, nil
}

// Delete removes a comment. A top-level comment cascades to its direct
// replies and every removed comment's activity record.
func (s *Service) Delete(ctx context.Context, postDocID, commentID, actor primitive.ObjectID) error {
	post, err := s.posts.FindByID(ctx, postDocID)
	if err == store.ErrNotFound {
		return errs.NotFound("Post not found")
	}
	if err != nil {
		return err
	}

	c, err := s.comments.FindByID(ctx, commentID)
	if err == store.ErrNotFound {
		return errs.NotFound("Comment not found")
	}
	if err != nil {
		return err
	}

	if c.ParentID == nil {
		if actor != c.FromUser && actor != post.Author {
			return errs.Unauthorized("Action not allowed")
		}
	} else {
		parent, err := s.comments.FindByID(ctx, *c.ParentID)
		if err == store.ErrNotFound {
			// Parent already gone; fall back to the top-level rule.
			if actor != c.FromUser && actor != post.Author {
				return errs.Unauthorized("Action not allowed")
			}
		} else if err != nil {
			return err
		} else if actor != parent.FromUser {
			return errs.Unauthorized("Action not allowed")
		}
	}

	if c.ParentID == nil {
		replies, err := s.comments.ListReplies(ctx, c.ID)
		if err != nil {
			log.Printf("[Comments] list replies of %s: %v", c.ID.Hex(), err)
		}
		for _, r := range replies {
			if err := s.comments.Delete(ctx, r.ID); err != nil {
				log.Printf("[Comments] delete reply %s: %v", r.ID.Hex(), err)
			}
			if err := s.activities.DeleteByComment(ctx, r.ID); err != nil {
				log.Printf("[Comments] delete reply activity %s: %v", r.ID.Hex(), err)
			}
		}
	}

	if err := s.comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	if err := s.activities.DeleteByComment(ctx, c.ID); err != nil {
		log.Printf("[Comments] delete activity %s: %v", c.ID.Hex(), err)
	}
	return nil
}

// ListByPost returns a post's comments, oldest first.
func (s *Service) ListByPost(ctx context.Context, postDocID primitive.ObjectID) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postDocID)
}
