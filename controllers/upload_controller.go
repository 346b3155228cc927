package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/utils"
)

// GetUploadedImage handles GET /uploads/:filename - serves locally stored client avatars
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required", "")
		return
	}

	// Prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		abortWithError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename", "")
		return
	}

	if !utils.IsImageFilename(filename) {
		abortWithError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG and JPEG images are supported", "")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		abortWithError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found", "")
		return
	}

	c.Header("Content-Type", utils.ContentTypeFor(filename))
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
