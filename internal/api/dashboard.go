package api

import (
	"crm_system/internal/crm"     // Dashboard aggregation
	"crm_system/internal/session" // Session type
	"crm_system/internal/utils"   // Cache
	"net/http"                    // HTTP status codes
	"time"                        // Time durations

	"github.com/gin-gonic/gin" // Gin web framework
)

// Views lists the sidebar navigation options in display order
var Views = []string{"Dashboard", "Customers", "Deals", "Activities"}

// dashboardTTL bounds how long a cached dashboard is served
const dashboardTTL = 60 * time.Second

// dashboardKey is the cache key of a session's dashboard on one day. The
// recent-activity count only changes with the date, so a new day misses.
func dashboardKey(s *session.Session, day string) string {
	return "dashboard:session:" + s.ID + ":" + day
}

// NavigationHandler returns the sidebar options and the signed-in user
func NavigationHandler() gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		c.JSON(http.StatusOK, gin.H{"views": Views, "username": s.Username})
	})
}

// DashboardHandler returns the dashboard metrics for the current session
func DashboardHandler(svc *crm.Service, cache utils.Cache) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		ctx := c.Request.Context()
		var cached crm.Dashboard // Dashboard struct to hold cached data
		key := dashboardKey(s, svc.Today())
		found, err := cache.Get(ctx, key, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"dashboard": cached, "cached": true})
			return
		}
		dashboard := svc.Dashboard(s)                    // Compute from the session
		_ = cache.Set(ctx, key, dashboard, dashboardTTL) // Cache for the next minute
		c.JSON(http.StatusOK, gin.H{"dashboard": dashboard, "cached": false})
	})
}
