package domain

// ActivityType is the kind of logged interaction
type ActivityType string

// Activity types, in form order
const (
	ActivityCall    ActivityType = "Call"
	ActivityMeeting ActivityType = "Meeting"
	ActivityEmail   ActivityType = "Email"
	ActivityTask    ActivityType = "Task"
)

// ActivityTypes lists every valid type in form order
var ActivityTypes = []ActivityType{ActivityCall, ActivityMeeting, ActivityEmail, ActivityTask}

// Valid reports whether t is one of ActivityTypes
func (t ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Activity Model
type Activity struct {
	ID       int          `json:"id"`       // Position-derived id
	Type     ActivityType `json:"type"`     // Interaction kind
	Customer string       `json:"customer"` // Customer name, not a foreign key
	Notes    string       `json:"notes"`    // Free-form notes
	Date     string       `json:"date"`     // YYYY-MM-DD
}
