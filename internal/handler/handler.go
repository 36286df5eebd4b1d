package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/model"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/service/responder"
	"review-responder-go/internal/service/scheduler"
)

// Store is the persistence the handlers read and write directly.
type Store interface {
	Ping(ctx context.Context) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetSettings(ctx context.Context, userID uint) (*model.UserSettings, error)
	GetOrCreateSettings(ctx context.Context, userID uint) (*model.UserSettings, error)
	UpdateSettings(ctx context.Context, settings *model.UserSettings) error
	ListPlatforms(ctx context.Context, userID uint) ([]model.Platform, error)
	GetPlatform(ctx context.Context, userID, id uint) (*model.Platform, error)
	CreatePlatform(ctx context.Context, platform *model.Platform) error
	UpdatePlatform(ctx context.Context, platform *model.Platform) error
	DeletePlatform(ctx context.Context, userID, id uint) error
	GetReview(ctx context.Context, userID, id uint) (*model.Review, error)
	ListReviews(ctx context.Context, userID uint, filter repository.ReviewFilter) ([]model.Review, int64, error)
	ListTemplates(ctx context.Context, userID uint) ([]model.ReplyTemplate, error)
	GetTemplate(ctx context.Context, userID, id uint) (*model.ReplyTemplate, error)
	CreateTemplate(ctx context.Context, template *model.ReplyTemplate) error
	UpdateTemplate(ctx context.Context, template *model.ReplyTemplate) error
	DeleteTemplate(ctx context.Context, userID, id uint) error
}

// Automation is the scheduler surface exposed over HTTP.
type Automation interface {
	TriggerAccountNow(ctx context.Context, userID uint) (*scheduler.AccountReport, error)
	IsProcessing(userID uint) bool
	IsRunning() bool
	GetNextRun() time.Time
	GetLastRun() time.Time
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store         Store
	auth          *auth.Service
	sessions      *auth.Sessions
	responder     *responder.Service
	automation    Automation
	generatorName string
}

// NewHandlers creates new HTTP handlers
func NewHandlers(store Store, authService *auth.Service, sessions *auth.Sessions, resp *responder.Service, automation Automation, generatorName string) *Handlers {
	return &Handlers{
		store:         store,
		auth:          authService,
		sessions:      sessions,
		responder:     resp,
		automation:    automation,
		generatorName: generatorName,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
	}

	secured := api.Group("", auth.RequireUser(h.sessions))
	{
		secured.GET("/me", h.Me)

		secured.GET("/settings", h.GetSettings)
		secured.PUT("/settings", h.UpdateSettings)

		secured.GET("/platforms", h.GetPlatforms)
		secured.POST("/platforms", h.CreatePlatform)
		secured.PUT("/platforms/:id", h.UpdatePlatform)
		secured.DELETE("/platforms/:id", h.DeletePlatform)

		secured.GET("/templates", h.GetTemplates)
		secured.POST("/templates", h.CreateTemplate)
		secured.PUT("/templates/:id", h.UpdateTemplate)
		secured.DELETE("/templates/:id", h.DeleteTemplate)

		secured.GET("/reviews", h.GetReviews)
		secured.POST("/reviews", h.CreateReview)
		secured.GET("/reviews/:id", h.GetReview)
		secured.POST("/reviews/:id/regenerate", h.RegenerateResponse)
		secured.POST("/reviews/:id/apply-template", h.ApplyTemplate)
		secured.POST("/responses/preview", h.PreviewResponse)

		secured.POST("/automation/check-now", h.CheckNow)
		secured.GET("/automation/status", h.GetAutomationStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Generator: h.generatorName,
		Metrics:   make(map[string]string),
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.automation.IsRunning() {
		response.Metrics["scheduler"] = "running"
		response.Metrics["next_run"] = h.automation.GetNextRun().Format(time.RFC3339)
		if last := h.automation.GetLastRun(); !last.IsZero() {
			response.Metrics["last_run"] = last.Format(time.RFC3339)
		}
	} else {
		response.Metrics["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

// respondError maps a domain error to its HTTP status. Anything unrecognised
// is logged and reported as a 500 with the given action in the message.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, responder.ErrNoTemplate):
		abortWithError(c, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, responder.ErrInvalidRating),
		errors.Is(err, responder.ErrInvalidTone),
		errors.Is(err, responder.ErrEmptyReview):
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, scheduler.ErrAccountBusy):
		abortWithError(c, http.StatusConflict, "account_busy", "A review check for this account is already running")
	default:
		logrus.WithField("user_id", auth.UserIDFromContext(c)).Errorf("Failed to %s: %v", action, err)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "Failed to "+action)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusBadRequest, "invalid_id", "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
