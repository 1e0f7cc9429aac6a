package handler

import (
	"net/http"
	"strconv"

	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	docs      *service.DocumentService
	maxSizeMB int64
}

func NewDocumentHandler(docs *service.DocumentService, maxSizeMB int) *DocumentHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &DocumentHandler{docs: docs, maxSizeMB: int64(maxSizeMB)}
}

// POST /api/tasks/:id/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > h.maxSizeMB<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	stored := h.docs.StoredName(file.Filename)
	if err := c.SaveUploadedFile(file, stored); err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.docs.Attach(c.Request.Context(), p, id, model.Document{
		FileName:   file.Filename,
		StoredPath: stored,
		MimeType:   file.Header.Get("Content-Type"),
		SizeBytes:  file.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// GET /api/tasks/:id/documents
func (h *DocumentHandler) ListByTask(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}
	docs, err := h.docs.ListByTask(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	doc, err := h.docs.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(doc.StoredPath, doc.FileName)
}

// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.docs.Delete(c.Request.Context(), p.BusinessID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
