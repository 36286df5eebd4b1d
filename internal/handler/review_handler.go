package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/service/responder"
)

// GetReviews returns a page of the account's reviews with optional filters
func (h *Handlers) GetReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter := repository.ReviewFilter{Page: page, Limit: limit}

	if raw := c.Query("platform_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid_id", "Invalid platform ID")
			return
		}
		platformID := uint(id)
		filter.PlatformID = &platformID
	}
	if raw := c.Query("auto_responded"); raw != "" {
		auto, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "validation_error", "auto_responded must be true or false")
			return
		}
		filter.AutoResponded = &auto
	}

	reviews, total, err := h.store.ListReviews(c.Request.Context(), auth.UserIDFromContext(c), filter)
	if err != nil {
		respondError(c, err, "fetch reviews")
		return
	}

	response := ReviewListResponse{
		Reviews: reviews,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	if response.Page < 1 {
		response.Page = 1
	}
	if response.Limit < 1 || response.Limit > 100 {
		response.Limit = 50
	}
	c.JSON(http.StatusOK, response)
}

// GetReview returns a specific review
func (h *Handlers) GetReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	review, err := h.store.GetReview(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err, "fetch review")
		return
	}
	c.JSON(http.StatusOK, review)
}

// CreateReview stores a manually entered review with a generated response
func (h *Handlers) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	out, err := h.responder.CreateReview(c.Request.Context(), auth.UserIDFromContext(c), reviewInput(req))
	if err != nil {
		respondError(c, err, "create review")
		return
	}
	c.JSON(http.StatusCreated, ReviewResponse{Review: out.Review, ResponseSource: out.Kind.String()})
}

// RegenerateResponse replaces a review's response with a newly generated one
func (h *Handlers) RegenerateResponse(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
			return
		}
	}

	out, err := h.responder.Regenerate(c.Request.Context(), auth.UserIDFromContext(c), id, req.Tone)
	if err != nil {
		respondError(c, err, "regenerate response")
		return
	}
	c.JSON(http.StatusOK, ReviewResponse{Review: out.Review, ResponseSource: out.Kind.String()})
}

// ApplyTemplate renders a reply template into a review's response
func (h *Handlers) ApplyTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ApplyTemplateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
			return
		}
	}

	review, err := h.responder.ApplyTemplate(c.Request.Context(), auth.UserIDFromContext(c), id, req.TemplateID)
	if err != nil {
		respondError(c, err, "apply template")
		return
	}
	c.JSON(http.StatusOK, ReviewResponse{Review: review, ResponseSource: "template"})
}

// PreviewResponse generates a response without saving anything
func (h *Handlers) PreviewResponse(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	result, err := h.responder.Preview(c.Request.Context(), auth.UserIDFromContext(c), reviewInput(req))
	if err != nil {
		respondError(c, err, "generate preview")
		return
	}
	c.JSON(http.StatusOK, PreviewResponse{ResponseText: result.Text, ResponseSource: result.Kind.String()})
}

func reviewInput(req ReviewRequest) responder.Input {
	return responder.Input{
		CustomerName: req.CustomerName,
		ReviewText:   req.ReviewText,
		StarRating:   req.StarRating,
		Tone:         req.Tone,
		PlatformID:   req.PlatformID,
	}
}
