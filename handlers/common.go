package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"simplog/comments"
	"simplog/errs"
	"simplog/feed"
	"simplog/interact"
	"simplog/lifecycle"
	"simplog/mailer"
	"simplog/storage"
	"simplog/store"
)

// Deps holds every service the handlers call; main wires it once at
// startup via Init.
type Deps struct {
	Stores    store.Stores
	Lifecycle *lifecycle.Manager
	Comments  *comments.Service
	Interact  *interact.Service
	Feed      *feed.Assembler
	Mailer    mailer.Mailer
	Storage   storage.Client
}

var deps Deps

func Init(d Deps) {
	deps = d
}

// requestUserID resolves the authenticated user set by the JWT
// middleware, answering 401 itself when it is missing or malformed.
func requestUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// optionalUserID resolves the user when present; anonymous requests
// get (NilObjectID, false) without failing the request.
func optionalUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

func fail(c *gin.Context, err error) {
	if e, ok := err.(*errs.Error); ok {
		c.JSON(e.Status, gin.H{
			"success": false,
			"message": e.Message,
			"error":   e.Fields,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Something went wrong!",
	})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
