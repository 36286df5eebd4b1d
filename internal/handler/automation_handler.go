package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-responder-go/internal/auth"
)

// CheckNow runs the review check for the caller's account immediately.
// Responds 409 when a check for the account is already running.
func (h *Handlers) CheckNow(c *gin.Context) {
	userID := auth.UserIDFromContext(c)

	// a client disconnect must not abandon a half-processed account
	ctx := context.WithoutCancel(c.Request.Context())

	report, err := h.automation.TriggerAccountNow(ctx, userID)
	if err != nil {
		respondError(c, err, "run review check")
		return
	}

	c.JSON(http.StatusOK, CheckNowResponse{
		Message: "Review check completed",
		Report:  report,
	})
}

// GetAutomationStatus returns the scheduler state and the account's watermark
func (h *Handlers) GetAutomationStatus(c *gin.Context) {
	userID := auth.UserIDFromContext(c)

	settings, err := h.store.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "fetch automation status")
		return
	}

	response := AutomationStatusResponse{
		Scheduler:  "stopped",
		Processing: h.automation.IsProcessing(userID),
	}
	if h.automation.IsRunning() {
		response.Scheduler = "running"
		next := h.automation.GetNextRun()
		response.NextRun = &next
	}
	if last := h.automation.GetLastRun(); !last.IsZero() {
		response.LastRun = &last
	}
	if settings != nil {
		response.AutoReplyEnabled = settings.AutoReplyEnabled
		response.LastCheckTime = settings.LastCheckTime
	}

	c.JSON(http.StatusOK, response)
}
