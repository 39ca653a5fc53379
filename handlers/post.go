package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/lifecycle"
	"simplog/models"
	"simplog/store"
)

// postFields binds the editable post fields; absent keys stay nil so
// partial updates leave the stored value untouched.
type postFields struct {
	HeaderBg *string   `json:"headerBg"`
	Title    *string   `json:"title"`
	Body     *string   `json:"body"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

func (f postFields) toFields() lifecycle.Fields {
	return lifecycle.Fields{
		HeaderBg: f.HeaderBg,
		Title:    f.Title,
		Body:     f.Body,
		Category: f.Category,
		Tags:     f.Tags,
	}
}

func postIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func CreateDraft(c *gin.Context) {
	var req postFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := deps.Lifecycle.CreateDraft(ctx, userID, req.toFields())
	if err != nil {
		log.Printf("[CreateDraft] %v", err)
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "create success", "post": post})
}

// GetEditableDraft hands back the document edits should go to: the
// post itself for DRAFT/RE_EDITOR, otherwise the published post's
// RE_EDITOR sibling, created on first call.
func GetEditableDraft(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := deps.Lifecycle.EditableDraft(ctx, id, userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"post": post})
}

func UpdatePost(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	var req postFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := deps.Lifecycle.Update(ctx, id, req.toFields(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Updated successfully", "post": post})
}

func PublishPost(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	var req postFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := deps.Lifecycle.Publish(ctx, id, req.toFields(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Published successfully", "post": post})
}

func DeletePost(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := deps.Lifecycle.Delete(ctx, id, userID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Delete successfully"})
}

func GetPosts(c *gin.Context) {
	pageNo, _ := strconv.ParseInt(c.Query("pageNo"), 10, 64)
	if pageNo < 1 {
		pageNo = 1
	}
	const pageSize = 10

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, total, err := deps.Stores.Posts.List(ctx, models.StatusPublished, pageNo, pageSize)
	if err != nil {
		log.Printf("[GetPosts] %v", err)
		fail(c, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	ok(c, gin.H{
		"total":       total,
		"pageSize":    pageSize,
		"currentPage": pageNo,
		"pageCount":   store.PageCount(total, pageSize),
		"datas":       posts,
	})
}

func GetPost(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := deps.Stores.Posts.FindByID(ctx, id)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := deps.Stores.Posts.IncRead(ctx, id); err != nil {
		log.Printf("[GetPost] inc read %s: %v", id.Hex(), err)
	}

	postComments, err := deps.Comments.ListByPost(ctx, id)
	if err != nil {
		log.Printf("[GetPost] list comments %s: %v", id.Hex(), err)
	}
	if postComments == nil {
		postComments = []models.Comment{}
	}

	ok(c, gin.H{"post": post, "comments": postComments})
}
