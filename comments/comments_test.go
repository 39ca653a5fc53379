package comments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/comments"
	"simplog/errs"
	"simplog/models"
	"simplog/store"
	"simplog/store/memory"
)

func newTestService(t *testing.T) (*comments.Service, store.Stores) {
	t.Helper()
	stores := memory.New().Stores()
	return comments.NewService(stores), stores
}

func seedPost(t *testing.T, s store.Stores, author primitive.ObjectID) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:     primitive.NewObjectID(),
		PostID: "p-1",
		Status: models.StatusPublished,
		Title:  "hello",
		Body:   "world",
		Author: author,
	}
	require.NoError(t, s.Posts.Insert(context.Background(), p))
	return p
}

func TestCreateSnapshotsIsAuthor(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	post := seedPost(t, s, author)
	ctx := context.Background()

	own, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "mine"}, author)
	require.NoError(t, err)
	assert.True(t, own.IsAuthor)

	other, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "theirs"}, reader)
	require.NoError(t, err)
	assert.False(t, other.IsAuthor)

	_, total, err := s.Activities.ListByUser(ctx, reader, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateEmptyBody(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	post := seedPost(t, s, author)

	_, err := svc.Create(context.Background(), post.ID, comments.CreateInput{Body: "   "}, author)
	assert.Equal(t, 422, errs.Status(err))
}

func TestCreateMissingPost(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), comments.CreateInput{Body: "x"}, primitive.NewObjectID())
	assert.Equal(t, 404, errs.Status(err))
}

func TestReplyDefaultsReplyToParentAuthor(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	replier := primitive.NewObjectID()
	post := seedPost(t, s, author)
	ctx := context.Background()

	parent, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "top"}, author)
	require.NoError(t, err)

	reply, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "re", ParentID: &parent.ID}, replier)
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyToUser)
	assert.Equal(t, author, *reply.ReplyToUser)
}

func TestNestedReplyRejected(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	post := seedPost(t, s, author)
	ctx := context.Background()

	parent, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "top"}, author)
	require.NoError(t, err)
	reply, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "re", ParentID: &parent.ID}, author)
	require.NoError(t, err)

	_, err = svc.Create(ctx, post.ID, comments.CreateInput{Body: "re-re", ParentID: &reply.ID}, author)
	assert.Equal(t, 422, errs.Status(err))
}

func TestReplyToForeignPostRejected(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	post := seedPost(t, s, author)
	other := &models.Post{ID: primitive.NewObjectID(), PostID: "p-2", Status: models.StatusPublished, Author: author}
	require.NoError(t, s.Posts.Insert(context.Background(), other))
	ctx := context.Background()

	parent, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "top"}, author)
	require.NoError(t, err)

	_, err = svc.Create(ctx, other.ID, comments.CreateInput{Body: "re", ParentID: &parent.ID}, author)
	assert.Equal(t, 404, errs.Status(err))
}

func TestDeleteAuthorization(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	replier := primitive.NewObjectID()
	post := seedPost(t, s, author)
	ctx := context.Background()

	top, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "top"}, commenter)
	require.NoError(t, err)
	reply, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "re", ParentID: &top.ID}, replier)
	require.NoError(t, err)

	// A reply is only removable by the parent comment's author, not
	// even by the reply's own author or the post author.
	assert.Equal(t, 401, errs.Status(svc.Delete(ctx, post.ID, reply.ID, replier)))
	assert.Equal(t, 401, errs.Status(svc.Delete(ctx, post.ID, reply.ID, author)))
	require.NoError(t, svc.Delete(ctx, post.ID, reply.ID, commenter))

	// A top-level comment is removable by the post author.
	require.NoError(t, svc.Delete(ctx, post.ID, top.ID, author))

	left, err := s.Comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, left)
}

func TestDeleteTopLevelCascadesReplies(t *testing.T) {
	svc, s := newTestService(t)
	author := primitive.NewObjectID()
	r1 := primitive.NewObjectID()
	r2 := primitive.NewObjectID()
	post := seedPost(t, s, author)
	ctx := context.Background()

	top, err := svc.Create(ctx, post.ID, comments.CreateInput{Body: "top"}, author)
	require.NoError(t, err)
	_, err = svc.Create(ctx, post.ID, comments.CreateInput{Body: "a", ParentID: &top.ID}, r1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, post.ID, comments.CreateInput{Body: "b", ParentID: &top.ID}, r2)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, post.ID, top.ID, author))

	left, err := s.Comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, left)

	for _, u := range []primitive.ObjectID{author, r1, r2} {
		_, total, err := s.Activities.ListByUser(ctx, u, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	}
}
