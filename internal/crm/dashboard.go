package crm

import (
	"crm_system/internal/domain"  // Domain models
	"crm_system/internal/session" // Session state
	"crm_system/internal/utils"   // Currency formatting
	"math"                        // Day flooring
	"time"                        // Recent-activity window
)

// RecentWindowDays is how many whole days back an activity still counts as recent
const RecentWindowDays = 7

// Dashboard is the summary shown on the landing view
type Dashboard struct {
	TotalCustomers        int                           `json:"total_customers"`          // Customer count
	TotalDealValue        float64                       `json:"total_deal_value"`         // Sum over all statuses
	TotalDealValueDisplay string                        `json:"total_deal_value_display"` // Formatted as $1,234.50
	OpenDeals             int                           `json:"open_deals"`               // Deals with status Open
	RecentActivities      int                           `json:"recent_activities"`        // Activities within the recent window
	DealValueByStatus     map[domain.DealStatus]float64 `json:"deal_value_by_status"`     // Deal value per status
	ActivitiesByType      map[domain.ActivityType]int   `json:"activities_by_type"`       // Activity count per type
}

// Summarize computes the dashboard. It has no side effects; now anchors the
// recent-activity window.
func Summarize(customers []domain.Customer, deals []domain.Deal, activities []domain.Activity, now time.Time) Dashboard {
	d := Dashboard{
		TotalCustomers:    len(customers),                  // Every customer counts
		DealValueByStatus: map[domain.DealStatus]float64{}, // Filled from deals
		ActivitiesByType:  map[domain.ActivityType]int{},   // Filled from activities
	}
	for _, deal := range deals {
		d.TotalDealValue += deal.Value // All statuses, not only open deals
		d.DealValueByStatus[deal.Status] += deal.Value
		if deal.Status == domain.DealOpen { // Exact match, On Hold is not open
			d.OpenDeals++
		}
	}
	for _, a := range activities {
		d.ActivitiesByType[a.Type]++
		if isRecent(a.Date, now) {
			d.RecentActivities++
		}
	}
	d.TotalDealValueDisplay = utils.FormatUSD(d.TotalDealValue) // e.g. $1,234.50
	return d
}

// isRecent reports whether date (YYYY-MM-DD, midnight) lies at most
// RecentWindowDays whole days before now, comparing wall-clock times.
// Future dates count as recent; unparseable dates never do.
func isRecent(date string, now time.Time) bool {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return false
	}
	// Compare wall clocks so the stored midnight and now share a zone
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	days := math.Floor(wall.Sub(day).Hours() / 24)
	return days <= RecentWindowDays
}

// Dashboard summarizes the session's collections as of now
func (svc *Service) Dashboard(s *session.Session) Dashboard {
	s.Lock()
	defer s.Unlock()
	return Summarize(s.Customers, s.Deals, s.Activities, svc.now()) // Fresh on every call
}
