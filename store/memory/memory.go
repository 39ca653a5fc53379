// Package memory implements the store interfaces on process-local
// maps. The service tests run against it; it mirrors the mongo
// implementation's behavior including ErrNotFound mapping.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/models"
	"simplog/store"
)

type DB struct {
	mu sync.Mutex

	posts       map[primitive.ObjectID]models.Post
	postImages  map[primitive.ObjectID]models.PostImage
	likes       map[primitive.ObjectID]models.LikePost
	collections map[primitive.ObjectID]models.Collection
	follows     map[primitive.ObjectID]models.Follow
	comments    map[primitive.ObjectID]models.Comment
	activities  map[primitive.ObjectID]models.Activity
	users       map[primitive.ObjectID]models.User
	verifyCodes []models.VerifyCode
}

func New() *DB {
	return &DB{
		posts:       make(map[primitive.ObjectID]models.Post),
		postImages:  make(map[primitive.ObjectID]models.PostImage),
		likes:       make(map[primitive.ObjectID]models.LikePost),
		collections: make(map[primitive.ObjectID]models.Collection),
		follows:     make(map[primitive.ObjectID]models.Follow),
		comments:    make(map[primitive.ObjectID]models.Comment),
		activities:  make(map[primitive.ObjectID]models.Activity),
		users:       make(map[primitive.ObjectID]models.User),
	}
}

// Stores returns the full repository bundle backed by this DB.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Posts:       &posts{db},
		PostImages:  &postImages{db},
		Likes:       &likes{db},
		Collections: &collections{db},
		Follows:     &follows{db},
		Comments:    &comments{db},
		Activities:  &activities{db},
		Users:       &users{db},
		VerifyCodes: &verifyCodes{db},
	}
}

// ===== posts =====

type posts struct{ db *DB }

func (s *posts) Insert(_ context.Context, p *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.posts {
		if existing.PostID == p.PostID && existing.Status == p.Status {
			return store.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.db.posts[p.ID] = *p
	return nil
}

func (s *posts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *posts) FindSibling(_ context.Context, postID string, status models.PostStatus) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.posts {
		if p.PostID == postID && p.Status == status {
			p := p
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *posts) Update(_ context.Context, id primitive.ObjectID, upd store.PostUpdate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	if upd.HeaderBg != nil {
		p.HeaderBg = *upd.HeaderBg
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Body != nil {
		p.Body = *upd.Body
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Tags != nil {
		p.Tags = append([]string(nil), (*upd.Tags)...)
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.UpdatedAt != nil {
		p.UpdatedAt = *upd.UpdatedAt
	}
	s.db.posts[id] = p
	return nil
}

func (s *posts) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.posts, id)
	return nil
}

func (s *posts) IncRead(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if p, ok := s.db.posts[id]; ok {
		p.Read++
		s.db.posts[id] = p
	}
	return nil
}

func (s *posts) List(_ context.Context, status models.PostStatus, pageNo, pageSize int64) ([]models.Post, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var all []models.Post
	for _, p := range s.db.posts {
		if p.Status == status {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pageNo, pageSize), int64(len(all)), nil
}

func paginate[T any](all []T, pageNo, pageSize int64) []T {
	start := (pageNo - 1) * pageSize
	if start < 0 || start >= int64(len(all)) {
		return nil
	}
	end := start + pageSize
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end]
}

// ===== post images =====

type postImages struct{ db *DB }

func (s *postImages) Find(_ context.Context, postDocID primitive.ObjectID) (*models.PostImage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.postImages[postDocID]
	if !ok {
		return nil, store.ErrNotFound
	}
	img.ImageList = append([]string(nil), img.ImageList...)
	return &img, nil
}

func (s *postImages) Upsert(_ context.Context, postDocID primitive.ObjectID, imageList []string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.postImages[postDocID]
	if !ok {
		img = models.PostImage{ID: primitive.NewObjectID(), PostID: postDocID}
	}
	img.ImageList = append([]string(nil), imageList...)
	s.db.postImages[postDocID] = img
	return nil
}

func (s *postImages) AddImage(_ context.Context, postDocID primitive.ObjectID, name string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	img, ok := s.db.postImages[postDocID]
	if !ok {
		img = models.PostImage{ID: primitive.NewObjectID(), PostID: postDocID}
	}
	for _, existing := range img.ImageList {
		if existing == name {
			return nil
		}
	}
	img.ImageList = append(img.ImageList, name)
	s.db.postImages[postDocID] = img
	return nil
}

func (s *postImages) Delete(_ context.Context, postDocID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.postImages, postDocID)
	return nil
}

// ===== likes =====

type likes struct{ db *DB }

func (s *likes) Find(_ context.Context, user, post primitive.ObjectID) (*models.LikePost, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, l := range s.db.likes {
		if l.User == user && l.Post == post {
			l := l
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *likes) Insert(_ context.Context, l *models.LikePost) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	s.db.likes[l.ID] = *l
	return nil
}

func (s *likes) Delete(_ context.Context, user, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, l := range s.db.likes {
		if l.User == user && l.Post == post {
			delete(s.db.likes, id)
		}
	}
	return nil
}

func (s *likes) CountByPost(_ context.Context, post primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, l := range s.db.likes {
		if l.Post == post {
			n++
		}
	}
	return n, nil
}

func (s *likes) ListByPost(_ context.Context, post primitive.ObjectID) ([]models.LikePost, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.LikePost
	for _, l := range s.db.likes {
		if l.Post == post {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *likes) DeleteByPost(_ context.Context, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, l := range s.db.likes {
		if l.Post == post {
			delete(s.db.likes, id)
		}
	}
	return nil
}

// ===== collections =====

type collections struct{ db *DB }

func (s *collections) Find(_ context.Context, user, post primitive.ObjectID) (*models.Collection, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.collections {
		if c.User == user && c.Post == post {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *collections) Insert(_ context.Context, col *models.Collection) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if col.ID.IsZero() {
		col.ID = primitive.NewObjectID()
	}
	s.db.collections[col.ID] = *col
	return nil
}

func (s *collections) Delete(_ context.Context, user, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, c := range s.db.collections {
		if c.User == user && c.Post == post {
			delete(s.db.collections, id)
		}
	}
	return nil
}

func (s *collections) ListByUser(_ context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Collection, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var all []models.Collection
	for _, c := range s.db.collections {
		if c.User == user {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pageNo, pageSize), int64(len(all)), nil
}

func (s *collections) DeleteByPost(_ context.Context, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, c := range s.db.collections {
		if c.Post == post {
			delete(s.db.collections, id)
		}
	}
	return nil
}

// ===== follows =====

type follows struct{ db *DB }

func (s *follows) Find(_ context.Context, from, to primitive.ObjectID) (*models.Follow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, f := range s.db.follows {
		if f.FollowFrom == from && f.FollowTo == to {
			f := f
			return &f, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *follows) Insert(_ context.Context, f *models.Follow) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.db.follows[f.ID] = *f
	return nil
}

func (s *follows) Delete(_ context.Context, from, to primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, f := range s.db.follows {
		if f.FollowFrom == from && f.FollowTo == to {
			delete(s.db.follows, id)
		}
	}
	return nil
}

// ===== comments =====

type comments struct{ db *DB }

func (s *comments) Insert(_ context.Context, c *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.db.comments[c.ID] = *c
	return nil
}

func (s *comments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *comments) ListByPost(_ context.Context, post primitive.ObjectID) ([]models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Comment
	for _, c := range s.db.comments {
		if c.Post == post {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *comments) ListReplies(_ context.Context, parentID primitive.ObjectID) ([]models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Comment
	for _, c := range s.db.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *comments) CountByPost(_ context.Context, post primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, c := range s.db.comments {
		if c.Post == post {
			n++
		}
	}
	return n, nil
}

func (s *comments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.comments, id)
	return nil
}

func (s *comments) DeleteByPost(_ context.Context, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, c := range s.db.comments {
		if c.Post == post {
			delete(s.db.comments, id)
		}
	}
	return nil
}

// ===== activities =====

type activities struct{ db *DB }

func (s *activities) Insert(_ context.Context, a *models.Activity) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.db.activities[a.ID] = *a
	return nil
}

func (s *activities) ListByUser(_ context.Context, user primitive.ObjectID, pageNo, pageSize int64) ([]models.Activity, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var all []models.Activity
	for _, a := range s.db.activities {
		if a.User == user {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pageNo, pageSize), int64(len(all)), nil
}

func (s *activities) DeleteLike(_ context.Context, user, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.activities {
		if a.User == user && a.LikePost != nil && *a.LikePost == post {
			delete(s.db.activities, id)
		}
	}
	return nil
}

func (s *activities) DeleteCollection(_ context.Context, user, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.activities {
		if a.User == user && a.CollectionPost != nil && *a.CollectionPost == post {
			delete(s.db.activities, id)
		}
	}
	return nil
}

func (s *activities) DeleteFollow(_ context.Context, from, to primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.activities {
		if a.User == from && a.FollowAuthor != nil && *a.FollowAuthor == to {
			delete(s.db.activities, id)
		}
	}
	return nil
}

func (s *activities) DeleteByComment(_ context.Context, comment primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.activities {
		if a.AddComment != nil && *a.AddComment == comment {
			delete(s.db.activities, id)
		}
	}
	return nil
}

func (s *activities) DeleteByPost(_ context.Context, post primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, a := range s.db.activities {
		if (a.Publish != nil && *a.Publish == post) ||
			(a.LikePost != nil && *a.LikePost == post) ||
			(a.CollectionPost != nil && *a.CollectionPost == post) {
			delete(s.db.activities, id)
		}
	}
	return nil
}

// ===== users =====

type users struct{ db *DB }

func (s *users) Insert(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.db.users[u.ID] = *u
	return nil
}

func (s *users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// ===== verify codes =====

type verifyCodes struct{ db *DB }

func (s *verifyCodes) Insert(_ context.Context, v *models.VerifyCode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.verifyCodes = append(s.db.verifyCodes, *v)
	return nil
}

func (s *verifyCodes) FindByEmail(_ context.Context, email string) (*models.VerifyCode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := len(s.db.verifyCodes) - 1; i >= 0; i-- {
		if s.db.verifyCodes[i].Email == email {
			v := s.db.verifyCodes[i]
			return &v, nil
		}
	}
	return nil, store.ErrNotFound
}
