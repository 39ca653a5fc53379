package routes

import (
	"simplog/handlers"
	"simplog/middleware"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "simplog API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public auth/mail routes, rate limited per IP
	public := router.Group("/api")
	public.Use(middleware.RateLimitMiddleware())
	public.POST("/register", handlers.Register)
	public.POST("/login", handlers.Login)
	public.POST("/mail", handlers.SendVerifyMail)

	// Read-side routes; a token is honored when present so the
	// has-state probes can answer for the current user
	open := router.Group("/api")
	open.Use(middleware.OptionalAuthMiddleware())
	open.GET("/posts", handlers.GetPosts)
	open.GET("/post/:id", handlers.GetPost)
	open.GET("/post/:id/likers", handlers.GetPostLikers)
	open.GET("/post/:id/hasLiked", handlers.HasLiked)
	open.GET("/post/:id/hasCollectioned", handlers.HasCollectioned)
	open.GET("/user/:userId", handlers.GetUser)
	open.GET("/user/:userId/hasFollowed", handlers.HasFollowedUser)
	open.GET("/user/:userId/activity", handlers.GetActivity)
	open.GET("/user/:userId/collections", handlers.GetUserCollections)

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())

	// Post lifecycle
	protected.POST("/post", handlers.CreateDraft)
	protected.GET("/post/:id/edit", handlers.GetEditableDraft)
	protected.PUT("/post/:id", handlers.UpdatePost)
	protected.POST("/post/:id/publish", handlers.PublishPost)
	protected.DELETE("/post/:id", handlers.DeletePost)

	// Images
	protected.POST("/post/:id/images", handlers.UploadImage)

	// Comments
	protected.POST("/post/:id/comment", handlers.CreateComment)
	protected.DELETE("/post/:id/comment/:commentId", handlers.DeleteComment)

	// Toggles
	protected.POST("/post/:id/like", handlers.ChangeLike)
	protected.POST("/post/:id/collection", handlers.ChangeCollection)
	protected.POST("/user/:userId/follow", handlers.ChangeFollow)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"success": false,
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
