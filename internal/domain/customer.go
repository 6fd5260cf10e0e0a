package domain

// DateLayout is the persisted YYYY-MM-DD format for every date field
const DateLayout = "2006-01-02"

// Customer Model
type Customer struct {
	ID          int    `json:"id"`           // Position-derived id, count+1 at insertion
	Name        string `json:"name"`         // Display name, referenced by deals and activities
	Email       string `json:"email"`        // Contact email
	Company     string `json:"company"`      // Company name, optional
	Phone       string `json:"phone"`        // Phone number, optional
	CreatedDate string `json:"created_date"` // YYYY-MM-DD
}
