package api

import (
	"crm_system/internal/auth"       // Sign-up and sign-in
	"crm_system/internal/crm"        // Dashboard day
	"crm_system/internal/middleware" // Session from context
	"crm_system/internal/session"    // Session lifecycle
	"crm_system/internal/utils"      // Utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // Joining load warnings
	"time"                           // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/pkg/errors"      // Error inspection
	"github.com/sirupsen/logrus" // Logging library
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token    string `json:"token"`             // JWT token bound to the new session
	Username string `json:"username"`          // Normalized username
	Warning  string `json:"warning,omitempty"` // Collections that failed to load and started empty
}

// RegisterHandler creates a user in the credential store
func RegisterHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		username, err := svc.SignUp(req.Username, req.Password) // Validate, hash and store
		switch {
		case errors.Is(err, auth.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 1-32 letters, digits or underscores"})
			return
		case errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		case err != nil:
			logrus.WithField("error", err.Error()).Error("Registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "username": username})
	}
}

// LoginHandler authenticates a user, opens a session and returns a JWT token for it
func LoginHandler(svc *auth.Service, sessions *session.Manager, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		username, err := svc.SignIn(req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Unknown user and wrong password look the same
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Sign-in failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
			return
		}
		s, err := sessions.Open(c.Request.Context(), username) // Load the user's partition
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"username": username,    // User signing in
				"error":    err.Error(), // Error message
			}).Error("Failed to open session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user data"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(s.ID, username, jwtSecret, ttl)
		if err != nil {
			_ = sessions.Close(c.Request.Context(), s.ID) // Do not leak the session
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{
			Token:    token,
			Username: username,
			Warning:  strings.Join(s.Warnings, "; "), // Sign-in still succeeds
		})
	}
}

// LogoutHandler ends the current session and drops everything it held
func LogoutHandler(sessions *session.Manager, svc *crm.Service, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := middleware.CurrentSession(c) // Get session from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		_ = cache.Delete(ctx, dashboardKey(s, svc.Today())) // Drop cached dashboard
		if err := sessions.Close(ctx, s.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"username":   s.Username,  // User signing out
				"session_id": s.ID,        // Session being closed
				"error":      err.Error(), // Error message
			}).Error("Failed to close session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}
