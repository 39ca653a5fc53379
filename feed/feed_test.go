package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/feed"
	"simplog/models"
	"simplog/store"
	"simplog/store/memory"
)

func newTestAssembler(t *testing.T) (*feed.Assembler, store.Stores) {
	t.Helper()
	stores := memory.New().Stores()
	return feed.NewAssembler(stores), stores
}

func seedUser(t *testing.T, s store.Stores, name string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: name,
		Company:  "acme",
		JobTitle: "dev",
	}
	require.NoError(t, s.Users.Insert(context.Background(), u))
	return u
}

func seedPublished(t *testing.T, s store.Stores, author primitive.ObjectID, body string) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:        primitive.NewObjectID(),
		PostID:    "p-1",
		Status:    models.StatusPublished,
		Title:     "hello",
		Body:      body,
		Category:  "go",
		Tags:      []string{"go"},
		Author:    author,
		Read:      7,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Posts.Insert(context.Background(), p))
	return p
}

func TestGetActivityEnrichesItems(t *testing.T) {
	a, s := newTestAssembler(t)
	ctx := context.Background()

	actor := seedUser(t, s, "alice")
	author := seedUser(t, s, "bob")
	post := seedPublished(t, s, author.ID, "# Heading\nplain *bold* text")

	// Live counts come from the fact records, not the activity.
	require.NoError(t, s.Likes.Insert(ctx, &models.LikePost{User: actor.ID, Post: post.ID}))
	require.NoError(t, s.Likes.Insert(ctx, &models.LikePost{User: author.ID, Post: post.ID}))
	comment := &models.Comment{ID: primitive.NewObjectID(), Body: "nice", FromUser: actor.ID, Post: post.ID, ReplyToUser: &author.ID}
	require.NoError(t, s.Comments.Insert(ctx, comment))

	base := time.Now()
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: actor.ID, ActiveType: models.ActiveLikePost, LikePost: &post.ID, CreatedAt: base,
	}))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: actor.ID, ActiveType: models.ActiveFollow, FollowAuthor: &author.ID, CreatedAt: base.Add(time.Second),
	}))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: actor.ID, ActiveType: models.ActiveComment, AddComment: &comment.ID, CreatedAt: base.Add(2 * time.Second),
	}))

	page, err := a.GetActivity(ctx, actor.ID, 1)
	require.NoError(t, err)

	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 15, page.PageSize)
	assert.EqualValues(t, 1, page.CurrentPage)
	assert.EqualValues(t, 1, page.PageCount)
	require.Len(t, page.Datas, 3)

	byType := map[models.ActiveType]feed.Item{}
	for _, item := range page.Datas {
		require.NotNil(t, item.User)
		assert.Equal(t, "alice", item.User.Username)
		byType[item.ActiveType] = item
	}

	like := byType[models.ActiveLikePost]
	require.NotNil(t, like.LikePost)
	assert.Equal(t, "hello", like.LikePost.Title)
	assert.Equal(t, "plain bold text", like.LikePost.Main)
	assert.EqualValues(t, 2, like.LikePost.Likes)
	assert.EqualValues(t, 1, like.LikePost.Comments)
	require.NotNil(t, like.LikePost.Author)
	assert.Equal(t, "bob", like.LikePost.Author.Username)

	follow := byType[models.ActiveFollow]
	require.NotNil(t, follow.FollowAuthor)
	assert.Equal(t, "bob", follow.FollowAuthor.Username)

	com := byType[models.ActiveComment]
	require.NotNil(t, com.AddComment)
	assert.Equal(t, "nice", com.AddComment.Body)
	require.NotNil(t, com.AddComment.Post)
	assert.Equal(t, post.PostID, com.AddComment.Post.PostID)
	require.NotNil(t, com.AddComment.ReplyToUser)
	assert.Equal(t, "bob", com.AddComment.ReplyToUser.Username)
}

func TestGetActivityDropsItemsWithMissingTarget(t *testing.T) {
	a, s := newTestAssembler(t)
	ctx := context.Background()

	actor := seedUser(t, s, "alice")
	author := seedUser(t, s, "bob")
	post := seedPublished(t, s, author.ID, "body")
	gone := primitive.NewObjectID()

	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: actor.ID, ActiveType: models.ActiveLikePost, LikePost: &post.ID, CreatedAt: time.Now(),
	}))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: actor.ID, ActiveType: models.ActiveLikePost, LikePost: &gone, CreatedAt: time.Now(),
	}))

	page, err := a.GetActivity(ctx, actor.ID, 1)
	require.NoError(t, err)

	// The broken item is dropped but still counted in the total.
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Datas, 1)
	assert.Equal(t, post.ID, page.Datas[0].LikePost.ID)
}

func TestGetActivityEmptyPage(t *testing.T) {
	a, _ := newTestAssembler(t)

	page, err := a.GetActivity(context.Background(), primitive.NewObjectID(), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
	assert.EqualValues(t, 1, page.CurrentPage)
	assert.Empty(t, page.Datas)
}

func TestUserCollections(t *testing.T) {
	a, s := newTestAssembler(t)
	ctx := context.Background()

	user := seedUser(t, s, "alice")
	author := seedUser(t, s, "bob")
	post := seedPublished(t, s, author.ID, "body")
	gone := primitive.NewObjectID()

	require.NoError(t, s.Collections.Insert(ctx, &models.Collection{User: user.ID, Post: post.ID, CreatedAt: time.Now()}))
	require.NoError(t, s.Collections.Insert(ctx, &models.Collection{User: user.ID, Post: gone, CreatedAt: time.Now()}))

	page, err := a.UserCollections(ctx, user.ID, 1)
	require.NoError(t, err)

	assert.EqualValues(t, 2, page.Total)
	assert.EqualValues(t, 1, page.PageCount)
	require.Len(t, page.Datas, 1)
	require.NotNil(t, page.Datas[0].Post)
	assert.Equal(t, post.ID, page.Datas[0].Post.ID)
}
