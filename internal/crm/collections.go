// Package crm implements the customer, deal and activity collections of a
// session and the dashboard computed over them.
package crm

import (
	"crm_system/internal/domain"  // Domain models
	"crm_system/internal/session" // Session state
	"crm_system/internal/storage" // JSON persistence
	"slices"                      // Collection copies
	"strings"                     // Form trimming
	"time"                        // Clock for created dates

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// CustomerForm is the submitted "new customer" form
type CustomerForm struct {
	Name    string `json:"name"`    // Required
	Email   string `json:"email"`   // Required
	Company string `json:"company"` // Optional
	Phone   string `json:"phone"`   // Optional
}

// DealForm is the submitted "new deal" form
type DealForm struct {
	Title    string            `json:"title"`    // Required
	Customer string            `json:"customer"` // Name of an existing customer
	Value    float64           `json:"value"`    // Must be positive
	Status   domain.DealStatus `json:"status"`   // Empty means Open
}

// ActivityForm is the submitted "new activity" form
type ActivityForm struct {
	Type     domain.ActivityType `json:"type"`     // Empty means Call
	Customer string              `json:"customer"` // Name of an existing customer
	Notes    string              `json:"notes"`    // Required
	Date     string              `json:"date"`     // YYYY-MM-DD, empty means today
}

// Service validates form submissions against a session and persists the
// affected collection to the session user's partition. Records are only ever
// appended; ids are the collection length after insertion.
type Service struct {
	store *storage.Store   // Partition storage
	now   func() time.Time // Clock, replaced in tests
}

// NewService returns a Service persisting to store
func NewService(store *storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// AddCustomer appends a customer. Name and email are required.
func (svc *Service) AddCustomer(s *session.Session, f CustomerForm) (domain.Customer, error) {
	name, email := strings.TrimSpace(f.Name), strings.TrimSpace(f.Email)
	if name == "" || email == "" {
		return domain.Customer{}, invalid("Name and email are required!")
	}

	s.Lock()
	defer s.Unlock()

	c := domain.Customer{
		ID:          len(s.Customers) + 1,         // Next id
		Name:        name,                         // Display name, referenced by deals and activities
		Email:       email,                        // Contact email
		Company:     strings.TrimSpace(f.Company), // Optional
		Phone:       strings.TrimSpace(f.Phone),   // Optional
		CreatedDate: svc.Today(),                  // Stamped at insertion
	}
	s.Customers = append(s.Customers, c) // Kept even if the save below fails
	err := svc.persist(s, storage.Customers, c.ID, func() error {
		return storage.SaveCollection(svc.store, s.Username, storage.Customers, s.Customers)
	})
	return c, err
}

// AddDeal appends a deal for an existing customer. Title and a positive value
// are required; an empty status means Open.
func (svc *Service) AddDeal(s *session.Session, f DealForm) (domain.Deal, error) {
	title, customer := strings.TrimSpace(f.Title), strings.TrimSpace(f.Customer)
	status := f.Status
	if status == "" {
		status = domain.DealOpen // First option of the form
	}
	if !status.Valid() {
		return domain.Deal{}, invalid("Invalid deal status: " + string(status))
	}

	s.Lock()
	defer s.Unlock()

	if err := checkCustomer(s.Customers, customer); err != nil {
		return domain.Deal{}, err
	}
	if title == "" || !(f.Value > 0) { // Zero, negative and NaN values are rejected
		return domain.Deal{}, invalid("Please fill in all required fields!")
	}

	d := domain.Deal{
		ID:          len(s.Deals) + 1, // Next id
		Title:       title,            // Deal name
		Customer:    customer,         // Customer name
		Value:       f.Value,          // Deal value in dollars
		Status:      status,           // Pipeline status
		CreatedDate: svc.Today(),      // Stamped at insertion
	}
	s.Deals = append(s.Deals, d)
	err := svc.persist(s, storage.Deals, d.ID, func() error {
		return storage.SaveCollection(svc.store, s.Username, storage.Deals, s.Deals)
	})
	return d, err
}

// AddActivity appends an activity for an existing customer. Notes are
// required; an empty type means Call and an empty date means today.
func (svc *Service) AddActivity(s *session.Session, f ActivityForm) (domain.Activity, error) {
	notes, customer := strings.TrimSpace(f.Notes), strings.TrimSpace(f.Customer)
	kind := f.Type
	if kind == "" {
		kind = domain.ActivityCall // First option of the form
	}
	if !kind.Valid() {
		return domain.Activity{}, invalid("Invalid activity type: " + string(kind))
	}
	date := strings.TrimSpace(f.Date)
	if date == "" {
		date = svc.Today() // Form defaults to today
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Activity{}, invalid("Date must be in YYYY-MM-DD format")
	}

	s.Lock()
	defer s.Unlock()

	if err := checkCustomer(s.Customers, customer); err != nil {
		return domain.Activity{}, err
	}
	if notes == "" {
		return domain.Activity{}, invalid("Please fill in all required fields!")
	}

	a := domain.Activity{
		ID:       len(s.Activities) + 1, // Next id
		Type:     kind,                  // Call, Meeting, Email or Task
		Customer: customer,              // Customer name
		Notes:    notes,                 // Free text
		Date:     date,                  // YYYY-MM-DD as submitted
	}
	s.Activities = append(s.Activities, a)
	err := svc.persist(s, storage.Activities, a.ID, func() error {
		return storage.SaveCollection(svc.store, s.Username, storage.Activities, s.Activities)
	})
	return a, err
}

// Customers returns a copy of the session's customers in insertion order
func (svc *Service) Customers(s *session.Session) []domain.Customer {
	s.Lock()
	defer s.Unlock()
	return slices.Clone(s.Customers)
}

// Deals returns a copy of the session's deals in insertion order
func (svc *Service) Deals(s *session.Session) []domain.Deal {
	s.Lock()
	defer s.Unlock()
	return slices.Clone(s.Deals)
}

// Activities returns a copy of the session's activities in insertion order
func (svc *Service) Activities(s *session.Session) []domain.Activity {
	s.Lock()
	defer s.Unlock()
	return slices.Clone(s.Activities)
}

// CustomerNames lists the names offered by the deal and activity forms
func (svc *Service) CustomerNames(s *session.Session) []string {
	s.Lock()
	defer s.Unlock()
	names := make([]string, len(s.Customers)) // Insertion order, duplicates kept
	for i, c := range s.Customers {
		names[i] = c.Name
	}
	return names
}

// checkCustomer resolves a customer reference by display name
func checkCustomer(customers []domain.Customer, name string) error {
	if len(customers) == 0 {
		return invalid("Please add customers first")
	}
	if name == "" {
		return invalid("Please fill in all required fields!")
	}
	for _, c := range customers {
		if c.Name == name {
			return nil
		}
	}
	return invalid("Unknown customer: " + name)
}

// Today is the current date in YYYY-MM-DD form, as stamped on new records
func (svc *Service) Today() string {
	return svc.now().Format(domain.DateLayout)
}

// persist saves one collection and logs the outcome. A failed save keeps the
// in-memory record and is reported as a PersistError.
func (svc *Service) persist(s *session.Session, name storage.Collection, id int, save func() error) error {
	log := logrus.WithFields(logrus.Fields{
		"username":   s.Username, // Partition owner
		"session_id": s.ID,       // Session that added the record
		"collection": name,       // Collection saved
		"id":         id,         // New record id
	})
	if err := save(); err != nil {
		log.WithField("error", err.Error()).Warn("Record kept in memory but not saved")
		return &PersistError{Collection: name, Err: err} // Non-fatal, reported as a warning
	}
	log.Info("Record added")
	return nil
}
