package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/comments"
)

type createCommentRequest struct {
	Body        string `json:"body" binding:"required"`
	ParentID    string `json:"parentId"`
	ReplyToUser string `json:"replyToUser"`
}

func CreateComment(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	in := comments.CreateInput{Body: req.Body}
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comment not found"})
			return
		}
		in.ParentID = &parentID
	}
	if req.ReplyToUser != "" {
		replyTo, err := primitive.ObjectIDFromHex(req.ReplyToUser)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		in.ReplyToUser = &replyTo
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment, err := deps.Comments.Create(ctx, id, in, userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "created successfully", "comment": comment})
}

func DeleteComment(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comment not found"})
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Comments.Delete(ctx, id, commentID, userID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Delete successfully"})
}
