package handler

import (
	"log/slog"
	"net/http"

	"compliance-tracker/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status. Internal failures
// are logged but never echoed to the client.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
