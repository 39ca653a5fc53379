package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/models"
)

func ChangeLike(c *gin.Context) {
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

	liked, err := deps.Interact.ToggleLike(ctx, id, userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "success", "liked": liked})
}

func ChangeCollection(c *gin.Context) {
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

	collected, err := deps.Interact.ToggleCollection(ctx, id, userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "success", "collected": collected})
}

func ChangeFollow(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	following, err := deps.Interact.ToggleFollow(ctx, targetID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "success", "following": following})
}

// HasLiked answers false for anonymous requests instead of 401.
func HasLiked(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	userID, authed := optionalUserID(c)
	if !authed {
		ok(c, gin.H{"hasLiked": false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	liked, err := deps.Interact.HasLiked(ctx, userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"hasLiked": liked})
}

func HasCollectioned(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	userID, authed := optionalUserID(c)
	if !authed {
		ok(c, gin.H{"hasCollectioned": false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collected, err := deps.Interact.HasCollectioned(ctx, userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"hasCollectioned": collected})
}

func HasFollowedUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	userID, authed := optionalUserID(c)
	if !authed {
		ok(c, gin.H{"hasFollowed": false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	following, err := deps.Interact.HasFollowed(ctx, userID, targetID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"hasFollowed": following})
}

func GetPostLikers(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	likers, err := deps.Interact.Likers(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if likers == nil {
		likers = []models.User{}
	}
	ok(c, gin.H{"likers": likers})
}
