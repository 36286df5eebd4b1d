package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/model"
)

// GetSettings returns the account settings, creating defaults on first access
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.store.GetOrCreateSettings(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err, "fetch settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if req.DefaultTone != nil && !model.ValidTone(*req.DefaultTone) {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Unsupported tone; use one of "+strings.Join(model.Tones, ", "))
		return
	}
	if req.Language != nil && strings.TrimSpace(*req.Language) == "" {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Language must not be empty")
		return
	}

	ctx := c.Request.Context()
	settings, err := h.store.GetOrCreateSettings(ctx, auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err, "fetch settings")
		return
	}

	if req.DefaultTone != nil {
		settings.DefaultTone = *req.DefaultTone
	}
	if req.Language != nil {
		settings.Language = strings.TrimSpace(*req.Language)
	}
	if req.AutoReplyEnabled != nil {
		settings.AutoReplyEnabled = *req.AutoReplyEnabled
	}

	if err := h.store.UpdateSettings(ctx, settings); err != nil {
		respondError(c, err, "update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
