package api

import (
	"crm_system/internal/auth"       // Sign-up and sign-in
	"crm_system/internal/crm"        // Collections and dashboard
	"crm_system/internal/middleware" // Auth and logging middleware
	"crm_system/internal/session"    // Session lifecycle
	"crm_system/internal/utils"      // Cache
	"time"                           // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Deps are the collaborators the HTTP API is built from
type Deps struct {
	Auth       *auth.Service    // Credential store access
	Sessions   *session.Manager // Live sessions
	CRM        *crm.Service     // Collections and dashboard
	Cache      utils.Cache      // Dashboard cache
	JWTSecret  string           // JWT signing key
	SessionTTL time.Duration    // Token lifetime, zero means none
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logrus.StandardLogger())) // Same logger as the handlers

	// Auth routes
	r.POST("/user", RegisterHandler(d.Auth))                                        // Sign-up endpoint
	r.POST("/session", LoginHandler(d.Auth, d.Sessions, d.JWTSecret, d.SessionTTL)) // Sign-in endpoint

	// Everything else needs a live session
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(d.JWTSecret, d.Sessions))
	authed.DELETE("/session", LogoutHandler(d.Sessions, d.CRM, d.Cache)) // Sign-out endpoint
	authed.GET("/navigation", NavigationHandler())                       // Sidebar options
	authed.GET("/dashboard", DashboardHandler(d.CRM, d.Cache))           // Dashboard metrics
	authed.GET("/customers", ListCustomersHandler(d.CRM))                // Customers table
	authed.POST("/customers", AddCustomerHandler(d.CRM, d.Cache))        // New customer form
	authed.GET("/deals", ListDealsHandler(d.CRM))                        // Deals table
	authed.POST("/deals", AddDealHandler(d.CRM, d.Cache))                // New deal form
	authed.GET("/activities", ListActivitiesHandler(d.CRM))              // Activities table
	authed.POST("/activities", AddActivityHandler(d.CRM, d.Cache))       // New activity form

	return r
}
