package handler

import (
	"time"

	"review-responder-go/internal/model"
	"review-responder-go/internal/service/scheduler"
)

// RegisterRequest represents the request structure for creating an account
type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	BusinessName string `json:"business_name"`
}

// LoginRequest represents the request structure for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SettingsRequest represents a partial update of the account settings
type SettingsRequest struct {
	DefaultTone      *string `json:"default_tone"`
	Language         *string `json:"language"`
	AutoReplyEnabled *bool   `json:"auto_reply_enabled"`
}

// PlatformRequest represents the request structure for connecting a platform
type PlatformRequest struct {
	Provider          string  `json:"provider" binding:"required"`
	ProviderAccountID string  `json:"provider_account_id"`
	APIKey            *string `json:"api_key"`
	AccessToken       *string `json:"access_token"`
}

// TemplateRequest represents the request structure for creating/updating reply templates
type TemplateRequest struct {
	Name       string `json:"name" binding:"required"`
	Tone       string `json:"tone" binding:"required"`
	StarRating *int   `json:"star_rating"`
	Content    string `json:"content" binding:"required"`
}

// ReviewRequest represents a manually entered review or a preview request
type ReviewRequest struct {
	CustomerName string `json:"customer_name"`
	ReviewText   string `json:"review_text" binding:"required"`
	StarRating   int    `json:"star_rating" binding:"required"`
	Tone         string `json:"tone"`
	PlatformID   *uint  `json:"platform_id"`
}

// RegenerateRequest optionally overrides the response tone
type RegenerateRequest struct {
	Tone string `json:"tone"`
}

// ApplyTemplateRequest selects a template; zero picks the best match
type ApplyTemplateRequest struct {
	TemplateID uint `json:"template_id"`
}

// ReviewResponse wraps a review with how its response was produced
type ReviewResponse struct {
	Review         *model.Review `json:"review"`
	ResponseSource string        `json:"response_source,omitempty"`
}

// ReviewListResponse represents a page of reviews
type ReviewListResponse struct {
	Reviews []model.Review `json:"reviews"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// PreviewResponse represents a generated but unsaved response
type PreviewResponse struct {
	ResponseText   string `json:"response_text"`
	ResponseSource string `json:"response_source"`
}

// TemplateResponse represents a reply template with its placeholder check
type TemplateResponse struct {
	model.ReplyTemplate
	UnknownPlaceholders []string `json:"unknown_placeholders,omitempty"`
}

// AutomationStatusResponse represents the scheduler state for an account
type AutomationStatusResponse struct {
	Scheduler        string     `json:"scheduler"`
	NextRun          *time.Time `json:"next_run,omitempty"`
	LastRun          *time.Time `json:"last_run,omitempty"`
	AutoReplyEnabled bool       `json:"auto_reply_enabled"`
	LastCheckTime    *time.Time `json:"last_check_time"`
	Processing       bool       `json:"processing"`
}

// CheckNowResponse represents the result of an on-demand review check
type CheckNowResponse struct {
	Message string                   `json:"message"`
	Report  *scheduler.AccountReport `json:"report"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Generator string            `json:"generator"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
