package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"simplog/comments"
	"simplog/database"
	"simplog/feed"
	"simplog/handlers"
	"simplog/interact"
	"simplog/lifecycle"
	"simplog/mailer"
	"simplog/routes"
	"simplog/storage"
	"simplog/store"
)

func main() {
	log.Println("Starting simplog backend server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	log.Println("Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB:", dbErr)
	}

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx); err != nil {
		idxCancel()
		log.Fatal("Failed to create indexes:", err)
	}
	idxCancel()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
		log.Println("Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	}

	storageClient, err := storage.NewCloudinary(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		log.Fatal("Failed to init storage client:", err)
	}

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	mail := mailer.NewSMTP(
		os.Getenv("SMTP_HOST"),
		smtpPort,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
		os.Getenv("MAIL_FROM"),
	)

	stores := store.NewMongo(database.DB)
	manager := lifecycle.NewManager(stores, storageClient)

	handlers.Init(handlers.Deps{
		Stores:    stores,
		Lifecycle: manager,
		Comments:  comments.NewService(stores),
		Interact:  interact.NewService(stores),
		Feed:      feed.NewAssembler(stores),
		Mailer:    mail,
		Storage:   storageClient,
	})

	router := routes.SetupRouter()

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "simplog backend running",
			"service": "healthy",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}

	// Let pending asset deletions finish before dropping the DB link.
	manager.Flush()

	if err := database.DisconnectMongo(); err != nil {
		log.Println("Mongo disconnect:", err)
	}

	log.Println("Server stopped gracefully")
}
