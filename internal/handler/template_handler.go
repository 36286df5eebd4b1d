package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/model"
	"review-responder-go/internal/parser"
)

// GetTemplates returns the account's reply templates
func (h *Handlers) GetTemplates(c *gin.Context) {
	templates, err := h.store.ListTemplates(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err, "fetch templates")
		return
	}

	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, toTemplateResponse(template))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateTemplate creates a new reply template
func (h *Handlers) CreateTemplate(c *gin.Context) {
	req, ok := bindTemplate(c)
	if !ok {
		return
	}

	template := model.ReplyTemplate{
		UserID:     auth.UserIDFromContext(c),
		Name:       strings.TrimSpace(req.Name),
		Tone:       req.Tone,
		StarRating: req.StarRating,
		Content:    req.Content,
	}
	if err := h.store.CreateTemplate(c.Request.Context(), &template); err != nil {
		respondError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, toTemplateResponse(template))
}

// UpdateTemplate replaces a reply template
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := bindTemplate(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	template, err := h.store.GetTemplate(ctx, auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err, "fetch template")
		return
	}

	template.Name = strings.TrimSpace(req.Name)
	template.Tone = req.Tone
	template.StarRating = req.StarRating
	template.Content = req.Content
	if err := h.store.UpdateTemplate(ctx, template); err != nil {
		respondError(c, err, "update template")
		return
	}
	c.JSON(http.StatusOK, toTemplateResponse(*template))
}

// DeleteTemplate deletes a reply template
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTemplate(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		respondError(c, err, "delete template")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func bindTemplate(c *gin.Context) (TemplateRequest, bool) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return req, false
	}
	if !model.ValidTone(req.Tone) {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Unsupported tone; use one of "+strings.Join(model.Tones, ", "))
		return req, false
	}
	if req.StarRating != nil && !model.ValidRating(*req.StarRating) {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Star rating must be between 1 and 5")
		return req, false
	}
	return req, true
}

func toTemplateResponse(template model.ReplyTemplate) TemplateResponse {
	return TemplateResponse{
		ReplyTemplate:       template,
		UnknownPlaceholders: parser.Unknown(template.Content),
	}
}
