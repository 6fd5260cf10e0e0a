package domain

// DealStatus is the pipeline stage of a deal
type DealStatus string

// Deal statuses, in form order
const (
	DealOpen   DealStatus = "Open"
	DealWon    DealStatus = "Won"
	DealLost   DealStatus = "Lost"
	DealOnHold DealStatus = "On Hold"
)

// DealStatuses lists every valid status in form order
var DealStatuses = []DealStatus{DealOpen, DealWon, DealLost, DealOnHold}

// Valid reports whether s is one of DealStatuses
func (s DealStatus) Valid() bool {
	for _, v := range DealStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Deal Model
type Deal struct {
	ID          int        `json:"id"`           // Position-derived id
	Title       string     `json:"title"`        // Deal title
	Customer    string     `json:"customer"`     // Customer name, not a foreign key
	Value       float64    `json:"value"`        // Deal value in dollars
	Status      DealStatus `json:"status"`       // Pipeline stage
	CreatedDate string     `json:"created_date"` // YYYY-MM-DD
}
