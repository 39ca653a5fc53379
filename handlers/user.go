package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"simplog/store"
)

func GetUser(c *gin.Context) {
	userID, okID := userIDParam(c)
	if !okID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := deps.Stores.Users.FindByID(ctx, userID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user})
}
