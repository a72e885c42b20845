package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-intel/internal/ingest"
)

// SyncFromFile imports holdings from an uploaded portfolio export.
func (h *Handlers) SyncFromFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing file upload"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid file type. Please upload a CSV export (.csv)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error reading file: " + err.Error()})
		return
	}
	defer file.Close()

	result, err := ingest.SyncFromCSV(c.Request.Context(), h.store, file, h.cfg.Sync.SkipRows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error syncing portfolio: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncFromPath imports holdings from a file on the server. Intended for
// development use.
func (h *Handlers) SyncFromPath(c *gin.Context) {
	path := c.Query("path")

	file, err := os.Open(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found: " + path})
		return
	}
	defer file.Close()

	result, err := ingest.SyncFromCSV(c.Request.Context(), h.store, file, h.cfg.Sync.SkipRows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error syncing portfolio: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncFromPublicURL imports holdings from a public portfolio page.
func (h *Handlers) SyncFromPublicURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" || !strings.HasPrefix(url, "http") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid URL. Please provide a valid public portfolio URL"})
		return
	}
	if !strings.Contains(url, "intelinvest.ru/public-portfolio") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "URL must be an IntelliInvest public portfolio URL"})
		return
	}

	result, err := ingest.SyncFromPublicURL(c.Request.Context(), h.store, h.publicFetcher, url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error syncing from public URL: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
