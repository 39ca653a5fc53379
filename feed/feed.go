// Package feed assembles the per-user activity feed: a paginated read
// of the activity ledger joined at read time with the referenced
// entities and enriched with live like/comment counts. Enrichment
// fans out concurrently per item and one item's failure never takes
// down the page.
package feed

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"simplog/helper"
	"simplog/models"
	"simplog/store"
)

const pageSize = 15

type Assembler struct {
	s store.Stores
}

func NewAssembler(s store.Stores) *Assembler {
	return &Assembler{s: s}
}

type UserView struct {
	ID              primitive.ObjectID `json:"id"`
	Avatar          string             `json:"avatar"`
	Username        string             `json:"username"`
	Company         string             `json:"company"`
	JobTitle        string             `json:"jobTitle"`
	SelfDescription string             `json:"selfDescription"`
}

type PostView struct {
	ID        primitive.ObjectID `json:"id"`
	PostID    string             `json:"postId"`
	Author    *UserView          `json:"author,omitempty"`
	HeaderBg  string             `json:"headerBg"`
	Title     string             `json:"title"`
	Main      string             `json:"main"`
	Read      int64              `json:"read"`
	Tags      []string           `json:"tags"`
	Category  string             `json:"category"`
	Likes     int64              `json:"likes"`
	Comments  int64              `json:"comments"`
	CreatedAt time.Time          `json:"createdAt"`
}

type CommentView struct {
	ID          primitive.ObjectID `json:"id"`
	Body        string             `json:"body"`
	ReplyToUser *UserView          `json:"replyToUser,omitempty"`
	Post        *PostView          `json:"post,omitempty"`
}

type Item struct {
	ID             primitive.ObjectID `json:"id"`
	ActiveType     models.ActiveType  `json:"activeType"`
	User           *UserView          `json:"user,omitempty"`
	Publish        *PostView          `json:"publish,omitempty"`
	CollectionPost *PostView          `json:"collectionPost,omitempty"`
	LikePost       *PostView          `json:"likePost,omitempty"`
	AddComment     *CommentView       `json:"addComment,omitempty"`
	FollowAuthor   *UserView          `json:"followAuthor,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type Page struct {
	Total       int64  `json:"total"`
	PageSize    int64  `json:"pageSize"`
	CurrentPage int64  `json:"currentPage"`
	PageCount   int64  `json:"pageCount"`
	Datas       []Item `json:"datas"`
}

// GetActivity reads one page of a user's activity, newest first. Items
// whose referenced entity has disappeared are dropped from the page;
// count enrichment failures default to zero rather than failing the
// item.
func (a *Assembler) GetActivity(ctx context.Context, userID primitive.ObjectID, pageNo int64) (*Page, error) {
	if pageNo < 1 {
		pageNo = 1
	}
	acts, total, err := a.s.Activities.ListByUser(ctx, userID, pageNo, pageSize)
	if err != nil {
		return nil, err
	}

	actor := a.userView(ctx, userID)

	items := make([]*Item, len(acts))
	var g errgroup.Group
	for i, act := range acts {
		i, act := i, act
		g.Go(func() error {
			item, err := a.buildItem(ctx, act)
			if err != nil {
				log.Printf("[Feed] enrich activity %s: %v", act.ID.Hex(), err)
				return nil
			}
			item.User = actor
			items[i] = item
			return nil
		})
	}
	g.Wait()

	page := &Page{
		Total:       total,
		PageSize:    pageSize,
		CurrentPage: pageNo,
		PageCount:   store.PageCount(total, pageSize),
		Datas:       make([]Item, 0, len(items)),
	}
	for _, item := range items {
		if item != nil {
			page.Datas = append(page.Datas, *item)
		}
	}
	return page, nil
}

func (a *Assembler) buildItem(ctx context.Context, act models.Activity) (*Item, error) {
	item := &Item{ID: act.ID, ActiveType: act.ActiveType, CreatedAt: act.CreatedAt}

	switch act.ActiveType {
	case models.ActivePublish:
		view, err := a.postView(ctx, *act.Publish)
		if err != nil {
			return nil, err
		}
		item.Publish = view

	case models.ActiveLikePost:
		view, err := a.postView(ctx, *act.LikePost)
		if err != nil {
			return nil, err
		}
		item.LikePost = view

	case models.ActiveCollectionPost:
		view, err := a.postView(ctx, *act.CollectionPost)
		if err != nil {
			return nil, err
		}
		item.CollectionPost = view

	case models.ActiveComment:
		comment, err := a.s.Comments.FindByID(ctx, *act.AddComment)
		if err != nil {
			return nil, err
		}
		view, err := a.postView(ctx, comment.Post)
		if err != nil {
			return nil, err
		}
		cv := &CommentView{ID: comment.ID, Body: comment.Body, Post: view}
		if comment.ReplyToUser != nil {
			cv.ReplyToUser = a.userView(ctx, *comment.ReplyToUser)
		}
		item.AddComment = cv

	case models.ActiveFollow:
		item.FollowAuthor = a.userView(ctx, *act.FollowAuthor)
		if item.FollowAuthor == nil {
			return nil, store.ErrNotFound
		}
	}
	return item, nil
}

// postView joins a post with its author and live counts.
func (a *Assembler) postView(ctx context.Context, id primitive.ObjectID) (*PostView, error) {
	post, err := a.s.Posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &PostView{
		ID:        post.ID,
		PostID:    post.PostID,
		Author:    a.userView(ctx, post.Author),
		HeaderBg:  post.HeaderBg,
		Title:     post.Title,
		Main:      helper.MainBody(post.Body),
		Read:      post.Read,
		Tags:      post.Tags,
		Category:  post.Category,
		CreatedAt: post.CreatedAt,
	}
	if likes, err := a.s.Likes.CountByPost(ctx, id); err == nil {
		view.Likes = likes
	} else {
		log.Printf("[Feed] count likes of %s: %v", id.Hex(), err)
	}
	if comments, err := a.s.Comments.CountByPost(ctx, id); err == nil {
		view.Comments = comments
	} else {
		log.Printf("[Feed] count comments of %s: %v", id.Hex(), err)
	}
	return view, nil
}

func (a *Assembler) userView(ctx context.Context, id primitive.ObjectID) *UserView {
	u, err := a.s.Users.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return &UserView{
		ID:              u.ID,
		Avatar:          u.Avatar,
		Username:        u.Username,
		Company:         u.Company,
		JobTitle:        u.JobTitle,
		SelfDescription: u.SelfDescription,
	}
}

type CollectionItem struct {
	ID        primitive.ObjectID `json:"id"`
	Post      *PostView          `json:"post,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

type CollectionPage struct {
	Total       int64            `json:"total"`
	PageSize    int64            `json:"pageSize"`
	CurrentPage int64            `json:"currentPage"`
	PageCount   int64            `json:"pageCount"`
	Datas       []CollectionItem `json:"datas"`
}

// UserCollections pages through the posts a user collected, joined
// with post and author and carrying the body excerpt.
func (a *Assembler) UserCollections(ctx context.Context, userID primitive.ObjectID, pageNo int64) (*CollectionPage, error) {
	if pageNo < 1 {
		pageNo = 1
	}
	cols, total, err := a.s.Collections.ListByUser(ctx, userID, pageNo, pageSize)
	if err != nil {
		return nil, err
	}

	page := &CollectionPage{
		Total:       total,
		PageSize:    pageSize,
		CurrentPage: pageNo,
		PageCount:   store.PageCount(total, pageSize),
		Datas:       make([]CollectionItem, 0, len(cols)),
	}
	for _, col := range cols {
		view, err := a.postView(ctx, col.Post)
		if err != nil {
			log.Printf("[Feed] enrich collection %s: %v", col.ID.Hex(), err)
			continue
		}
		page.Datas = append(page.Datas, CollectionItem{ID: col.ID, Post: view, CreatedAt: col.CreatedAt})
	}
	return page, nil
}
