// Package lifecycle drives a post through DRAFT -> PUBLISHED and the
// copy-on-write RE_EDITOR sibling that holds edits to an already
// published post. Every multi-step operation runs as an ordered
// sequence of independent writes: the post documents are settled
// first, secondary cleanup (images, fact records, activity) follows
// best-effort.
package lifecycle

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/errs"
	"simplog/helper"
	"simplog/models"
	"simplog/storage"
	"simplog/store"
)

type Manager struct {
	posts       store.PostStore
	images      store.PostImageStore
	likes       store.LikePostStore
	collections store.CollectionStore
	comments    store.CommentStore
	activities  store.ActivityStore
	storage     storage.Client

	cleanup sync.WaitGroup
}

func NewManager(s store.Stores, sc storage.Client) *Manager {
	return &Manager{
		posts:       s.Posts,
		images:      s.PostImages,
		likes:       s.Likes,
		collections: s.Collections,
		comments:    s.Comments,
		activities:  s.Activities,
		storage:     sc,
	}
}

// Fields carries the editable post fields; nil means unchanged.
type Fields struct {
	HeaderBg *string
	Title    *string
	Body     *string
	Category *string
	Tags     *[]string
}

func strOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func tagsOr(p *[]string, fallback []string) []string {
	if p != nil {
		return *p
	}
	return fallback
}

// Flush waits for pending best-effort storage deletes; main calls it
// during shutdown.
func (m *Manager) Flush() {
	m.cleanup.Wait()
}

// CreateDraft starts a new post with a fresh stable postId. Drafts are
// private, so no activity is recorded.
func (m *Manager) CreateDraft(ctx context.Context, author primitive.ObjectID, f Fields) (*models.Post, error) {
	now := time.Now()
	p := &models.Post{
		ID:        primitive.NewObjectID(),
		PostID:    uuid.NewString(),
		Status:    models.StatusDraft,
		HeaderBg:  strOr(f.HeaderBg, ""),
		Title:     strOr(f.Title, ""),
		Body:      strOr(f.Body, ""),
		Category:  strOr(f.Category, ""),
		Tags:      tagsOr(f.Tags, []string{}),
		Author:    author,
		Read:      0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.posts.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// EditableDraft resolves the document the requester should edit. For a
// PUBLISHED post that is the RE_EDITOR sibling, created on first call
// and reused afterwards, so the operation is idempotent.
func (m *Manager) EditableDraft(ctx context.Context, docID, requester primitive.ObjectID) (*models.Post, error) {
	p, err := m.getOwned(ctx, docID, requester)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPublished {
		return p, nil
	}
	return m.ensureShadow(ctx, p)
}

// ensureShadow returns the RE_EDITOR sibling of a published post,
// cloning the published fields and image list when none exists yet.
func (m *Manager) ensureShadow(ctx context.Context, pub *models.Post) (*models.Post, error) {
	sib, err := m.posts.FindSibling(ctx, pub.PostID, models.StatusReEditor)
	if err == nil {
		return sib, nil
	}
	if err != store.ErrNotFound {
		return nil, err
	}

	shadow := &models.Post{
		ID:        primitive.NewObjectID(),
		PostID:    pub.PostID,
		Status:    models.StatusReEditor,
		HeaderBg:  pub.HeaderBg,
		Title:     pub.Title,
		Body:      pub.Body,
		Category:  pub.Category,
		Tags:      append([]string(nil), pub.Tags...),
		Author:    pub.Author,
		Read:      pub.Read,
		CreatedAt: pub.CreatedAt,
		UpdatedAt: time.Now(),
	}
	if err := m.posts.Insert(ctx, shadow); err == store.ErrDuplicate {
		// A concurrent call won the insert; adopt its sibling.
		return m.posts.FindSibling(ctx, pub.PostID, models.StatusReEditor)
	} else if err != nil {
		return nil, err
	}

	if img, err := m.images.Find(ctx, pub.ID); err == nil {
		if err := m.images.Upsert(ctx, shadow.ID, img.ImageList); err != nil {
			log.Printf("[Lifecycle] clone image list %s: %v", shadow.ID.Hex(), err)
		}
	} else if err != store.ErrNotFound {
		log.Printf("[Lifecycle] load image list %s: %v", pub.ID.Hex(), err)
	}
	return shadow, nil
}

// Update persists edits. A PUBLISHED document is immutable except via
// Publish, so edits to it are redirected onto its RE_EDITOR sibling.
func (m *Manager) Update(ctx context.Context, docID primitive.ObjectID, f Fields, requester primitive.ObjectID) (*models.Post, error) {
	p, err := m.getOwned(ctx, docID, requester)
	if err != nil {
		return nil, err
	}

	target := p
	if p.Status == models.StatusPublished {
		if target, err = m.ensureShadow(ctx, p); err != nil {
			return nil, err
		}
	}

	oldHeader := target.HeaderBg
	now := time.Now()
	upd := store.PostUpdate{
		HeaderBg:  f.HeaderBg,
		Title:     f.Title,
		Body:      f.Body,
		Category:  f.Category,
		Tags:      f.Tags,
		UpdatedAt: &now,
	}
	if err := m.posts.Update(ctx, target.ID, upd); err != nil {
		return nil, err
	}

	newHeader := strOr(f.HeaderBg, target.HeaderBg)
	newBody := strOr(f.Body, target.Body)

	if f.HeaderBg != nil && *f.HeaderBg == "" && oldHeader != "" {
		m.scrub(helper.ImageName(oldHeader))
	}
	m.pruneImages(ctx, target.ID, newBody, newHeader)

	return m.posts.FindByID(ctx, target.ID)
}

// Publish validates the submitted content and either flips a DRAFT in
// place (recording the one PUBLISH activity) or collapses the
// RE_EDITOR sibling back onto the PUBLISHED document. Republishing
// never records another activity.
func (m *Manager) Publish(ctx context.Context, docID primitive.ObjectID, f Fields, requester primitive.ObjectID) (*models.Post, error) {
	p, err := m.getOwned(ctx, docID, requester)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case models.StatusDraft:
		if err := checkContent(f, p); err != nil {
			return nil, err
		}
		return m.publishInPlace(ctx, p, f, true)

	case models.StatusReEditor:
		pub, err := m.posts.FindSibling(ctx, p.PostID, models.StatusPublished)
		if err == store.ErrNotFound {
			// Orphan shadow; publish it directly.
			if err := checkContent(f, p); err != nil {
				return nil, err
			}
			return m.publishInPlace(ctx, p, f, false)
		}
		if err != nil {
			return nil, err
		}
		if err := checkContent(f, p); err != nil {
			return nil, err
		}
		return m.collapse(ctx, pub, p, f)

	default: // PUBLISHED
		re, err := m.posts.FindSibling(ctx, p.PostID, models.StatusReEditor)
		if err == store.ErrNotFound {
			if err := checkContent(f, p); err != nil {
				return nil, err
			}
			return m.publishInPlace(ctx, p, f, false)
		}
		if err != nil {
			return nil, err
		}
		if err := checkContent(f, re); err != nil {
			return nil, err
		}
		return m.collapse(ctx, p, re, f)
	}
}

func (m *Manager) publishInPlace(ctx context.Context, p *models.Post, f Fields, firstPublish bool) (*models.Post, error) {
	now := time.Now()
	status := models.StatusPublished
	upd := store.PostUpdate{
		HeaderBg:  f.HeaderBg,
		Title:     f.Title,
		Body:      f.Body,
		Category:  f.Category,
		Tags:      f.Tags,
		Status:    &status,
		UpdatedAt: &now,
	}
	if err := m.posts.Update(ctx, p.ID, upd); err != nil {
		return nil, err
	}
	m.pruneImages(ctx, p.ID, strOr(f.Body, p.Body), strOr(f.HeaderBg, p.HeaderBg))

	if firstPublish {
		act := &models.Activity{
			User:       p.Author,
			ActiveType: models.ActivePublish,
			Publish:    &p.ID,
			CreatedAt:  now,
		}
		if err := m.activities.Insert(ctx, act); err != nil {
			log.Printf("[Lifecycle] record publish activity %s: %v", p.ID.Hex(), err)
		}
	}
	return m.posts.FindByID(ctx, p.ID)
}

// collapse copies the RE_EDITOR content onto the PUBLISHED document,
// consumes the RE_EDITOR document and makes its image list canonical.
func (m *Manager) collapse(ctx context.Context, pub, re *models.Post, f Fields) (*models.Post, error) {
	newHeader := strOr(f.HeaderBg, re.HeaderBg)
	newTitle := strOr(f.Title, re.Title)
	newBody := strOr(f.Body, re.Body)
	newCategory := strOr(f.Category, re.Category)
	newTags := tagsOr(f.Tags, re.Tags)

	oldHeader := pub.HeaderBg
	var oldList []string
	if img, err := m.images.Find(ctx, pub.ID); err == nil {
		oldList = img.ImageList
	}

	// The published document takes over the shadow's edit timestamp.
	updatedAt := re.UpdatedAt
	upd := store.PostUpdate{
		HeaderBg:  &newHeader,
		Title:     &newTitle,
		Body:      &newBody,
		Category:  &newCategory,
		Tags:      &newTags,
		UpdatedAt: &updatedAt,
	}
	if err := m.posts.Update(ctx, pub.ID, upd); err != nil {
		return nil, err
	}
	if err := m.posts.Delete(ctx, re.ID); err != nil {
		log.Printf("[Lifecycle] delete shadow %s: %v", re.ID.Hex(), err)
	}

	// The shadow's image list becomes canonical.
	if img, err := m.images.Find(ctx, re.ID); err == nil {
		if err := m.images.Upsert(ctx, pub.ID, img.ImageList); err != nil {
			log.Printf("[Lifecycle] adopt image list %s: %v", pub.ID.Hex(), err)
		}
		if err := m.images.Delete(ctx, re.ID); err != nil {
			log.Printf("[Lifecycle] drop shadow image list %s: %v", re.ID.Hex(), err)
		}
	} else if err != store.ErrNotFound {
		log.Printf("[Lifecycle] load shadow image list %s: %v", re.ID.Hex(), err)
	}

	// Assets the old published content referenced but the new one does
	// not are gone for good.
	var orphans []string
	seen := map[string]bool{}
	for _, name := range append(append([]string(nil), oldList...), helper.ImageName(oldHeader)) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if !helper.Referenced(name, newBody, newHeader) {
			orphans = append(orphans, name)
		}
	}
	m.scrubMulti(orphans)
	m.pruneImages(ctx, pub.ID, newBody, newHeader)

	return m.posts.FindByID(ctx, pub.ID)
}

// Delete removes the document, its RE_EDITOR sibling and every
// dependent record. The post documents go first so a mid-sequence
// crash leaves at worst orphaned secondary records.
func (m *Manager) Delete(ctx context.Context, docID, requester primitive.ObjectID) error {
	p, err := m.getOwned(ctx, docID, requester)
	if err != nil {
		return err
	}

	targets := []*models.Post{p}
	if p.Status != models.StatusReEditor {
		if sib, err := m.posts.FindSibling(ctx, p.PostID, models.StatusReEditor); err == nil {
			targets = append(targets, sib)
		} else if err != store.ErrNotFound {
			log.Printf("[Lifecycle] find sibling of %s: %v", p.ID.Hex(), err)
		}
	}

	for _, t := range targets {
		if err := m.posts.Delete(ctx, t.ID); err != nil {
			return err
		}
	}

	for _, t := range targets {
		var keys []string
		if img, err := m.images.Find(ctx, t.ID); err == nil {
			keys = append(keys, img.ImageList...)
			if err := m.images.Delete(ctx, t.ID); err != nil {
				log.Printf("[Lifecycle] delete image list %s: %v", t.ID.Hex(), err)
			}
		} else if err != store.ErrNotFound {
			log.Printf("[Lifecycle] load image list %s: %v", t.ID.Hex(), err)
		}
		if name := helper.ImageName(t.HeaderBg); name != "" {
			keys = append(keys, name)
		}
		m.scrubMulti(keys)

		cs, err := m.comments.ListByPost(ctx, t.ID)
		if err != nil {
			log.Printf("[Lifecycle] list comments of %s: %v", t.ID.Hex(), err)
		}
		for _, c := range cs {
			if err := m.activities.DeleteByComment(ctx, c.ID); err != nil {
				log.Printf("[Lifecycle] delete comment activity %s: %v", c.ID.Hex(), err)
			}
		}
		if err := m.comments.DeleteByPost(ctx, t.ID); err != nil {
			log.Printf("[Lifecycle] delete comments of %s: %v", t.ID.Hex(), err)
		}
		if err := m.likes.DeleteByPost(ctx, t.ID); err != nil {
			log.Printf("[Lifecycle] delete likes of %s: %v", t.ID.Hex(), err)
		}
		if err := m.collections.DeleteByPost(ctx, t.ID); err != nil {
			log.Printf("[Lifecycle] delete collections of %s: %v", t.ID.Hex(), err)
		}
		if err := m.activities.DeleteByPost(ctx, t.ID); err != nil {
			log.Printf("[Lifecycle] delete activities of %s: %v", t.ID.Hex(), err)
		}
	}
	return nil
}

// RecordUpload appends an uploaded asset to the document's image list,
// creating the record lazily.
func (m *Manager) RecordUpload(ctx context.Context, docID, requester primitive.ObjectID, name string) error {
	if _, err := m.getOwned(ctx, docID, requester); err != nil {
		return err
	}
	return m.images.AddImage(ctx, docID, name)
}

func (m *Manager) getOwned(ctx context.Context, docID, requester primitive.ObjectID) (*models.Post, error) {
	p, err := m.posts.FindByID(ctx, docID)
	if err == store.ErrNotFound {
		return nil, errs.NotFound("Post not found")
	}
	if err != nil {
		return nil, err
	}
	if p.Author != requester {
		return nil, errs.Unauthorized("Action not allowed")
	}
	return p, nil
}

// pruneImages drops image-list entries the body/header no longer
// reference and scrubs the assets from storage.
func (m *Manager) pruneImages(ctx context.Context, docID primitive.ObjectID, body, headerBg string) {
	img, err := m.images.Find(ctx, docID)
	if err == store.ErrNotFound {
		return
	}
	if err != nil {
		log.Printf("[Lifecycle] load image list %s: %v", docID.Hex(), err)
		return
	}

	var keep, orphans []string
	for _, name := range img.ImageList {
		if helper.Referenced(name, body, headerBg) {
			keep = append(keep, name)
		} else {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) == 0 {
		return
	}
	if err := m.images.Upsert(ctx, docID, keep); err != nil {
		log.Printf("[Lifecycle] prune image list %s: %v", docID.Hex(), err)
	}
	m.scrubMulti(orphans)
}

// scrub and scrubMulti delete storage assets fire-and-forget: failures
// are logged, never surfaced.
func (m *Manager) scrub(key string) {
	if key == "" {
		return
	}
	m.cleanup.Add(1)
	go func() {
		defer m.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.storage.Delete(ctx, key); err != nil {
			log.Printf("[Lifecycle] storage delete %s: %v", key, err)
		}
	}()
}

func (m *Manager) scrubMulti(keys []string) {
	if len(keys) == 0 {
		return
	}
	keys = append([]string(nil), keys...)
	m.cleanup.Add(1)
	go func() {
		defer m.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.storage.DeleteMulti(ctx, keys); err != nil {
			log.Printf("[Lifecycle] storage delete %v: %v", keys, err)
		}
	}()
}

// checkContent enforces the publish requirements, reporting every
// missing field at once. f overrides fall back to the document's
// current values.
func checkContent(f Fields, base *models.Post) error {
	body := strOr(f.Body, base.Body)
	title := strOr(f.Title, base.Title)
	category := strOr(f.Category, base.Category)
	tags := tagsOr(f.Tags, base.Tags)

	var missing []string
	fields := map[string]string{}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "Body")
		fields["body"] = "Body must not be empty"
	}
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "Title")
		fields["title"] = "Title must not be empty"
	}
	if strings.TrimSpace(category) == "" {
		missing = append(missing, "Category")
		fields["category"] = "Category must not be empty"
	}
	if len(tags) == 0 {
		missing = append(missing, "Tags")
		fields["tags"] = "Tags must not be empty"
	}
	if len(missing) > 0 {
		return errs.Validation(strings.Join(missing, "|")+" must not be empty", fields)
	}
	return nil
}
