package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	ResellerID string `json:"resellerId"`
	Note       string `json:"note"`
}

// ListNotes GET /api/notes
func (h *Handler) ListNotes(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	notes, err := h.Store.ListNotes(c.Request.Context())
	if err != nil {
		logger.Errorf("list notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notes"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// SaveNote POST /api/notes
func (h *Handler) SaveNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ResellerID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resellerId required"})
		return
	}
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notes storage unavailable"})
		return
	}
	if err := h.Store.SaveNote(c.Request.Context(), strings.TrimSpace(req.ResellerID), req.Note); err != nil {
		logger.Errorf("save note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save note"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
