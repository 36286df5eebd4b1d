package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "auth.user_id"

// RequireUser aborts with 401 unless the request carries a valid session.
// The user id is made available through UserIDFromContext.
func RequireUser(s *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.UserID(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authentication required",
				"code":    http.StatusUnauthorized,
			})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// UserIDFromContext returns the id set by RequireUser, or 0.
func UserIDFromContext(c *gin.Context) uint {
	return c.GetUint(contextKeyUserID)
}

// SetUserID puts userID where UserIDFromContext finds it.
func SetUserID(c *gin.Context, userID uint) {
	c.Set(contextKeyUserID, userID)
}
