package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadImage stores an image asset for a post document and records it
// in the document's image list.
func UploadImage(c *gin.Context) {
	id, okID := postIDParam(c)
	if !okID {
		return
	}
	userID, okAuth := requestUserID(c)
	if !okAuth {
		return
	}

	file, err := c.FormFile("images")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No image file provided"})
		return
	}

	fileName := strconv.FormatInt(time.Now().UnixMilli(), 10) + filepath.Ext(file.Filename)
	tmpPath := filepath.Join(os.TempDir(), fileName)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		log.Printf("[UploadImage] save %s: %v", tmpPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store file"})
		return
	}
	defer os.Remove(tmpPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := deps.Storage.Put(ctx, "images/"+fileName, tmpPath)
	if err != nil {
		log.Printf("[UploadImage] put %s: %v", fileName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Upload failed"})
		return
	}

	if err := deps.Lifecycle.RecordUpload(ctx, id, userID, result.Name); err != nil {
		fail(c, err)
		return
	}

	ok(c, gin.H{"message": "Upload success", "url": result.URL, "name": result.Name})
}
