package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func userIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func GetActivity(c *gin.Context) {
	userID, okID := userIDParam(c)
	if !okID {
		return
	}
	pageNo, _ := strconv.ParseInt(c.Query("pageNo"), 10, 64)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	page, err := deps.Feed.GetActivity(ctx, userID, pageNo)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

func GetUserCollections(c *gin.Context) {
	userID, okID := userIDParam(c)
	if !okID {
		return
	}
	pageNo, _ := strconv.ParseInt(c.Query("pageNo"), 10, 64)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	page, err := deps.Feed.UserCollections(ctx, userID, pageNo)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}
