package api

import (
	"crm_system/internal/crm"        // Collections
	"crm_system/internal/middleware" // Session from context
	"crm_system/internal/session"    // Session type
	"crm_system/internal/utils"      // Cache
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/pkg/errors"    // Error inspection
)

// ListCustomersHandler renders the customers table
func ListCustomersHandler(svc *crm.Service) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		customers := svc.Customers(s)
		resp := gin.H{"customers": customers}
		if len(customers) == 0 {
			resp["info"] = "No customers added yet."
		}
		c.JSON(http.StatusOK, resp)
	})
}

// AddCustomerHandler submits the new-customer form
func AddCustomerHandler(svc *crm.Service, cache utils.Cache) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		var form crm.CustomerForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		customer, err := svc.AddCustomer(s, form)
		respondAdded(c, svc, cache, s, err, gin.H{"message": "Customer added successfully!", "customer": customer})
	})
}

// ListDealsHandler renders the deals table
func ListDealsHandler(svc *crm.Service) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		deals := svc.Deals(s)
		resp := gin.H{"deals": deals, "customers": svc.CustomerNames(s)}
		if len(deals) == 0 {
			resp["info"] = "No deals added yet."
		}
		c.JSON(http.StatusOK, resp)
	})
}

// AddDealHandler submits the new-deal form
func AddDealHandler(svc *crm.Service, cache utils.Cache) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		var form crm.DealForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		deal, err := svc.AddDeal(s, form)
		respondAdded(c, svc, cache, s, err, gin.H{"message": "Deal added successfully!", "deal": deal})
	})
}

// ListActivitiesHandler renders the activities table
func ListActivitiesHandler(svc *crm.Service) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		activities := svc.Activities(s)
		resp := gin.H{"activities": activities, "customers": svc.CustomerNames(s)}
		if len(activities) == 0 {
			resp["info"] = "No activities added yet."
		}
		c.JSON(http.StatusOK, resp)
	})
}

// AddActivityHandler submits the new-activity form
func AddActivityHandler(svc *crm.Service, cache utils.Cache) gin.HandlerFunc {
	return withSession(func(c *gin.Context, s *session.Session) {
		var form crm.ActivityForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		activity, err := svc.AddActivity(s, form)
		respondAdded(c, svc, cache, s, err, gin.H{"message": "Activity added successfully!", "activity": activity})
	})
}

// withSession resolves the session set by the auth middleware
func withSession(h func(*gin.Context, *session.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := middleware.CurrentSession(c) // Get session from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		h(c, s)
	}
}

// respondAdded writes the notification for a form submission. A failed save
// still reports the record as added, with a warning.
func respondAdded(c *gin.Context, svc *crm.Service, cache utils.Cache, s *session.Session, err error, body gin.H) {
	var verr *crm.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg}) // Nothing changed
		return
	}
	var perr *crm.PersistError
	if errors.As(err, &perr) {
		body["warning"] = perr.Error() // Kept in memory only
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add record"})
		return
	}
	_ = cache.Delete(c.Request.Context(), dashboardKey(s, svc.Today())) // Invalidate dashboard cache
	c.JSON(http.StatusCreated, body)
}
