package middleware

import (
	"crm_system/internal/session" // Session lookup
	"crm_system/internal/utils"   // JWT utility functions
	"net/http"                    // HTTP status codes
	"strings"                     // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/pkg/errors"      // Error inspection
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

const sessionKey = "session" // gin context key of the resolved session

// JWTAuthMiddleware validates bearer tokens and resolves them to a live session
func JWTAuthMiddleware(secret string, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		s, err := sessions.Get(c.Request.Context(), claims.SessionID) // Resolve the session
		if errors.Is(err, session.ErrNoSession) {
			// Signed out, expired or unknown session
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired or signed out"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"session_id": claims.SessionID, // Session being resolved
				"error":      err.Error(),      // Error message
			}).Error("Session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		// A token must belong to the user its session was opened for
		if s.Username != claims.Username {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(sessionKey, s) // Store session in context
		c.Next()             // Proceed to the next handler
	}
}

// CurrentSession returns the session stored by JWTAuthMiddleware
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}
