package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/model"
)

// GetPlatforms returns the account's connected platforms
func (h *Handlers) GetPlatforms(c *gin.Context) {
	platforms, err := h.store.ListPlatforms(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err, "fetch platforms")
		return
	}
	if platforms == nil {
		platforms = []model.Platform{}
	}
	c.JSON(http.StatusOK, platforms)
}

// CreatePlatform connects a review platform
func (h *Handlers) CreatePlatform(c *gin.Context) {
	var req PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Provider) == "" {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	platform := model.Platform{
		UserID:            auth.UserIDFromContext(c),
		Provider:          strings.TrimSpace(req.Provider),
		ProviderAccountID: req.ProviderAccountID,
		APIKey:            req.APIKey,
		AccessToken:       req.AccessToken,
	}
	if err := h.store.CreatePlatform(c.Request.Context(), &platform); err != nil {
		respondError(c, err, "create platform")
		return
	}
	c.JSON(http.StatusCreated, platform)
}

// UpdatePlatform replaces a platform's connection details
func (h *Handlers) UpdatePlatform(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Provider) == "" {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	platform, err := h.store.GetPlatform(ctx, auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err, "fetch platform")
		return
	}

	platform.Provider = strings.TrimSpace(req.Provider)
	platform.ProviderAccountID = req.ProviderAccountID
	platform.APIKey = req.APIKey
	platform.AccessToken = req.AccessToken
	if err := h.store.UpdatePlatform(ctx, platform); err != nil {
		respondError(c, err, "update platform")
		return
	}
	c.JSON(http.StatusOK, platform)
}

// DeletePlatform disconnects a platform; its reviews are kept
func (h *Handlers) DeletePlatform(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeletePlatform(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		respondError(c, err, "delete platform")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Platform deleted successfully"})
}
