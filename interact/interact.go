// Package interact implements the like/collection/follow toggles.
// Each fact record is keyed by (actor, target), so toggling is
// idempotent under retry; every create pairs with an activity record
// and every undo deletes it.
package interact

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/errs"
	"simplog/models"
	"simplog/store"
)

type Service struct {
	posts       store.PostStore
	likes       store.LikePostStore
	collections store.CollectionStore
	follows     store.FollowStore
	activities  store.ActivityStore
	users       store.UserStore
}

func NewService(s store.Stores) *Service {
	return &Service{
		posts:       s.Posts,
		likes:       s.Likes,
		collections: s.Collections,
		follows:     s.Follows,
		activities:  s.Activities,
		users:       s.Users,
	}
}

// ToggleLike flips the liked state and returns the new state.
func (s *Service) ToggleLike(ctx context.Context, postID, actor primitive.ObjectID) (bool, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if err == store.ErrNotFound {
			return false, errs.NotFound("Post not found")
		}
		return false, err
	}

	_, err := s.likes.Find(ctx, actor, postID)
	if err == nil {
		if err := s.likes.Delete(ctx, actor, postID); err != nil {
			return false, err
		}
		if err := s.activities.DeleteLike(ctx, actor, postID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != store.ErrNotFound {
		return false, err
	}

	now := time.Now()
	if err := s.likes.Insert(ctx, &models.LikePost{User: actor, Post: postID, CreatedAt: now}); err != nil {
		return false, err
	}
	act := &models.Activity{User: actor, ActiveType: models.ActiveLikePost, LikePost: &postID, CreatedAt: now}
	if err := s.activities.Insert(ctx, act); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleCollection flips the collected state and returns the new state.
func (s *Service) ToggleCollection(ctx context.Context, postID, actor primitive.ObjectID) (bool, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if err == store.ErrNotFound {
			return false, errs.NotFound("Post not found")
		}
		return false, err
	}

	_, err := s.collections.Find(ctx, actor, postID)
	if err == nil {
		if err := s.collections.Delete(ctx, actor, postID); err != nil {
			return false, err
		}
		if err := s.activities.DeleteCollection(ctx, actor, postID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != store.ErrNotFound {
		return false, err
	}

	now := time.Now()
	if err := s.collections.Insert(ctx, &models.Collection{User: actor, Post: postID, CreatedAt: now}); err != nil {
		return false, err
	}
	act := &models.Activity{User: actor, ActiveType: models.ActiveCollectionPost, CollectionPost: &postID, CreatedAt: now}
	if err := s.activities.Insert(ctx, act); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFollow flips the following state and returns the new state.
func (s *Service) ToggleFollow(ctx context.Context, target, actor primitive.ObjectID) (bool, error) {
	_, err := s.follows.Find(ctx, actor, target)
	if err == nil {
		if err := s.follows.Delete(ctx, actor, target); err != nil {
			return false, err
		}
		if err := s.activities.DeleteFollow(ctx, actor, target); err != nil {
			return false, err
		}
		return false, nil
	}
	if err != store.ErrNotFound {
		return false, err
	}

	now := time.Now()
	if err := s.follows.Insert(ctx, &models.Follow{FollowFrom: actor, FollowTo: target, CreatedAt: now}); err != nil {
		return false, err
	}
	act := &models.Activity{User: actor, ActiveType: models.ActiveFollow, FollowAuthor: &target, CreatedAt: now}
	if err := s.activities.Insert(ctx, act); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) HasLiked(ctx context.Context, user, post primitive.ObjectID) (bool, error) {
	_, err := s.likes.Find(ctx, user, post)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) HasCollectioned(ctx context.Context, user, post primitive.ObjectID) (bool, error) {
	_, err := s.collections.Find(ctx, user, post)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) HasFollowed(ctx context.Context, from, to primitive.ObjectID) (bool, error) {
	_, err := s.follows.Find(ctx, from, to)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// Likers lists the users who liked a post.
func (s *Service) Likers(ctx context.Context, postID primitive.ObjectID) ([]models.User, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if err == store.ErrNotFound {
			return nil, errs.NotFound("Post not found")
		}
		return nil, err
	}

	likes, err := s.likes.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(likes))
	for _, l := range likes {
		u, err := s.users.FindByID(ctx, l.User)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}
