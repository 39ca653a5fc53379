package lifecycle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/errs"
	"simplog/lifecycle"
	"simplog/models"
	"simplog/storage"
	"simplog/store"
	"simplog/store/memory"
)

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStorage) Put(_ context.Context, key, _ string) (*storage.PutResult, error) {
	return &storage.PutResult{URL: "https://cdn.example.com/" + key, Name: key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) DeleteMulti(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeStorage) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestManager(t *testing.T) (*lifecycle.Manager, store.Stores, *fakeStorage) {
	t.Helper()
	stores := memory.New().Stores()
	fs := &fakeStorage{}
	return lifecycle.NewManager(stores, fs), stores, fs
}

func sp(s string) *string { return &s }

func tags(vals ...string) *[]string { return &vals }

func fullFields() lifecycle.Fields {
	return lifecycle.Fields{
		Title:    sp("Getting started"),
		Body:     sp("# Intro\nplain text body"),
		Category: sp("go"),
		Tags:     tags("go", "tutorial"),
	}
}

func activityCount(t *testing.T, s store.Stores, user primitive.ObjectID) int64 {
	t.Helper()
	_, total, err := s.Activities.ListByUser(context.Background(), user, 1, 50)
	require.NoError(t, err)
	return total
}

func TestCreateDraft(t *testing.T) {
	m, s, _ := newTestManager(t)
	author := primitive.NewObjectID()

	p, err := m.CreateDraft(context.Background(), author, lifecycle.Fields{Title: sp("wip")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, p.Status)
	assert.NotEmpty(t, p.PostID)
	assert.Equal(t, "wip", p.Title)
	assert.EqualValues(t, 0, p.Read)
	assert.EqualValues(t, 0, activityCount(t, s, author))
}

func TestPublishDraftRecordsOneActivity(t *testing.T) {
	m, s, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)

	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, pub.Status)
	assert.EqualValues(t, 1, activityCount(t, s, author))

	// Republishing the same document records nothing new.
	_, err = m.Publish(ctx, pub.ID, lifecycle.Fields{Title: sp("Getting started v2")}, author)
	require.NoError(t, err)
	assert.EqualValues(t, 1, activityCount(t, s, author))
}

func TestPublishValidationListsEveryMissingField(t *testing.T) {
	m, _, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, lifecycle.Fields{})
	require.NoError(t, err)

	_, err = m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, 422, e.Status)
	assert.Contains(t, e.Fields, "body")
	assert.Contains(t, e.Fields, "title")
	assert.Contains(t, e.Fields, "category")
	assert.Contains(t, e.Fields, "tags")
}

func TestEditableDraftIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	shadow1, err := m.EditableDraft(ctx, pub.ID, author)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReEditor, shadow1.Status)
	assert.NotEqual(t, pub.ID, shadow1.ID)
	assert.Equal(t, pub.PostID, shadow1.PostID)
	assert.Equal(t, pub.Title, shadow1.Title)

	shadow2, err := m.EditableDraft(ctx, pub.ID, author)
	require.NoError(t, err)
	assert.Equal(t, shadow1.ID, shadow2.ID)
}

// racingPostStore reports the first RE_EDITOR sibling lookup as a miss,
// reproducing the window in which another request inserts the sibling
// between the lookup and the insert.
type racingPostStore struct {
	store.PostStore
	mu     sync.Mutex
	missed bool
}

func (r *racingPostStore) FindSibling(ctx context.Context, postID string, status models.PostStatus) (*models.Post, error) {
	r.mu.Lock()
	if status == models.StatusReEditor && !r.missed {
		r.missed = true
		r.mu.Unlock()
		return nil, store.ErrNotFound
	}
	r.mu.Unlock()
	return r.PostStore.FindSibling(ctx, postID, status)
}

func TestEditableDraftAdoptsConcurrentSibling(t *testing.T) {
	stores := memory.New().Stores()
	racy := &racingPostStore{PostStore: stores.Posts}
	stores.Posts = racy
	m := lifecycle.NewManager(stores, &fakeStorage{})
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	// The competing request's sibling lands first.
	winner := &models.Post{
		ID:     primitive.NewObjectID(),
		PostID: pub.PostID,
		Status: models.StatusReEditor,
		Title:  pub.Title,
		Author: author,
	}
	require.NoError(t, stores.Posts.Insert(ctx, winner))

	// This request misses the lookup, loses the insert, and adopts the
	// winner instead of creating a second sibling.
	got, err := m.EditableDraft(ctx, pub.ID, author)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)

	sib, err := stores.Posts.FindSibling(ctx, pub.PostID, models.StatusReEditor)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, sib.ID)
}

func TestCollapseAdoptsShadowTimestamp(t *testing.T) {
	m, _, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	shadow, err := m.Update(ctx, pub.ID, lifecycle.Fields{Title: sp("B")}, author)
	require.NoError(t, err)

	final, err := m.Publish(ctx, pub.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)
	assert.True(t, final.UpdatedAt.Equal(shadow.UpdatedAt))
}

func TestEditableDraftOnDraftReturnsItself(t *testing.T) {
	m, _, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)

	got, err := m.EditableDraft(ctx, draft.ID, author)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, models.StatusDraft, got.Status)
}

func TestUpdatePublishedRedirectsToShadow(t *testing.T) {
	m, s, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	updated, err := m.Update(ctx, pub.ID, lifecycle.Fields{Title: sp("B")}, author)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReEditor, updated.Status)
	assert.Equal(t, "B", updated.Title)

	// The published document stays on the old title until publish.
	unchanged, err := s.Posts.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Getting started", unchanged.Title)
}

func TestPublishCollapsesShadow(t *testing.T) {
	m, s, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	shadow, err := m.Update(ctx, pub.ID, lifecycle.Fields{Title: sp("B")}, author)
	require.NoError(t, err)

	final, err := m.Publish(ctx, pub.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	assert.Equal(t, pub.ID, final.ID)
	assert.Equal(t, "B", final.Title)
	assert.Equal(t, models.StatusPublished, final.Status)

	_, err = s.Posts.FindByID(ctx, shadow.ID)
	assert.Equal(t, store.ErrNotFound, err)
	_, err = s.Posts.FindSibling(ctx, pub.PostID, models.StatusReEditor)
	assert.Equal(t, store.ErrNotFound, err)

	// Still only the original publish activity.
	assert.EqualValues(t, 1, activityCount(t, s, author))
}

func TestPublishShadowDirectly(t *testing.T) {
	m, s, _ := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)
	shadow, err := m.EditableDraft(ctx, pub.ID, author)
	require.NoError(t, err)

	final, err := m.Publish(ctx, shadow.ID, lifecycle.Fields{Title: sp("C")}, author)
	require.NoError(t, err)
	assert.Equal(t, pub.ID, final.ID)
	assert.Equal(t, "C", final.Title)

	_, err = s.Posts.FindByID(ctx, shadow.ID)
	assert.Equal(t, store.ErrNotFound, err)
}

func TestOwnershipChecks(t *testing.T) {
	m, _, _ := newTestManager(t)
	author := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	ctx := context.Background()

	draft, err := m.CreateDraft(ctx, author, fullFields())
	require.NoError(t, err)

	_, err = m.Update(ctx, draft.ID, lifecycle.Fields{Title: sp("x")}, stranger)
	assert.Equal(t, 401, errs.Status(err))

	_, err = m.Update(ctx, primitive.NewObjectID(), lifecycle.Fields{}, author)
	assert.Equal(t, 404, errs.Status(err))
}

func TestClearedHeaderScrubsAsset(t *testing.T) {
	m, _, fs := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	f := fullFields()
	f.HeaderBg = sp("https://cdn.example.com/images/hdr.png")
	draft, err := m.CreateDraft(ctx, author, f)
	require.NoError(t, err)

	_, err = m.Update(ctx, draft.ID, lifecycle.Fields{HeaderBg: sp("")}, author)
	require.NoError(t, err)
	m.Flush()

	assert.Contains(t, fs.Deleted(), "images/hdr.png")
}

func TestCollapseScrubsOrphanedImages(t *testing.T) {
	m, _, fs := newTestManager(t)
	author := primitive.NewObjectID()
	ctx := context.Background()

	f := fullFields()
	f.Body = sp("see images/a.png and images/b.png")
	draft, err := m.CreateDraft(ctx, author, f)
	require.NoError(t, err)
	require.NoError(t, m.RecordUpload(ctx, draft.ID, author, "images/a.png"))
	require.NoError(t, m.RecordUpload(ctx, draft.ID, author, "images/b.png"))

	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)

	// The re-edit drops b.png from the body.
	_, err = m.Update(ctx, pub.ID, lifecycle.Fields{Body: sp("see images/a.png only")}, author)
	require.NoError(t, err)
	_, err = m.Publish(ctx, pub.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)
	m.Flush()

	assert.Contains(t, fs.Deleted(), "images/b.png")
	assert.NotContains(t, fs.Deleted(), "images/a.png")
}

func TestDeleteCascades(t *testing.T) {
	m, s, fs := newTestManager(t)
	author := primitive.NewObjectID()
	reader := primitive.NewObjectID()
	ctx := context.Background()

	f := fullFields()
	f.Body = sp("body with images/pic.png")
	draft, err := m.CreateDraft(ctx, author, f)
	require.NoError(t, err)
	require.NoError(t, m.RecordUpload(ctx, draft.ID, author, "images/pic.png"))
	pub, err := m.Publish(ctx, draft.ID, lifecycle.Fields{}, author)
	require.NoError(t, err)
	shadow, err := m.EditableDraft(ctx, pub.ID, author)
	require.NoError(t, err)

	require.NoError(t, s.Likes.Insert(ctx, &models.LikePost{User: reader, Post: pub.ID}))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: reader, ActiveType: models.ActiveLikePost, LikePost: &pub.ID,
	}))
	require.NoError(t, s.Collections.Insert(ctx, &models.Collection{User: reader, Post: pub.ID}))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: reader, ActiveType: models.ActiveCollectionPost, CollectionPost: &pub.ID,
	}))
	comment := &models.Comment{ID: primitive.NewObjectID(), Body: "nice", FromUser: reader, Post: pub.ID}
	require.NoError(t, s.Comments.Insert(ctx, comment))
	require.NoError(t, s.Activities.Insert(ctx, &models.Activity{
		User: reader, ActiveType: models.ActiveComment, AddComment: &comment.ID,
	}))

	require.NoError(t, m.Delete(ctx, pub.ID, author))
	m.Flush()

	_, err = s.Posts.FindByID(ctx, pub.ID)
	assert.Equal(t, store.ErrNotFound, err)
	_, err = s.Posts.FindByID(ctx, shadow.ID)
	assert.Equal(t, store.ErrNotFound, err)

	likes, err := s.Likes.CountByPost(ctx, pub.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, likes)
	commentsLeft, err := s.Comments.CountByPost(ctx, pub.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, commentsLeft)
	assert.EqualValues(t, 0, activityCount(t, s, reader))
	assert.EqualValues(t, 0, activityCount(t, s, author))

	_, err = s.PostImages.Find(ctx, pub.ID)
	assert.Equal(t, store.ErrNotFound, err)
	assert.Contains(t, fs.Deleted(), "images/pic.png")
}
