package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"review-responder-go/internal/auth"
)

// Register creates an account and logs it in
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.BusinessName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			abortWithError(c, http.StatusConflict, "email_taken", err.Error())
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		default:
			respondError(c, err, "register account")
		}
		return
	}

	if err := h.sessions.Login(c.Writer, c.Request, user.ID); err != nil {
		logrus.WithField("user_id", user.ID).Errorf("Failed to save session: %v", err)
		abortWithError(c, http.StatusInternalServerError, "session_error", "Failed to start session")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login checks credentials and starts a session
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			abortWithError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
			return
		}
		respondError(c, err, "log in")
		return
	}

	if err := h.sessions.Login(c.Writer, c.Request, user.ID); err != nil {
		logrus.WithField("user_id", user.ID).Errorf("Failed to save session: %v", err)
		abortWithError(c, http.StatusInternalServerError, "session_error", "Failed to start session")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout ends the session
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Writer, c.Request); err != nil {
		logrus.Warnf("Failed to clear session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the logged-in account
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err, "fetch account")
		return
	}
	c.JSON(http.StatusOK, user)
}
