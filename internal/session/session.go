// Package session holds the authenticated state of one interactive user:
// the username and in-memory copies of that user's collections.
package session

import (
	"crm_system/internal/domain" // Customer, deal and activity records
	"sync"                       // Session mutex
)

// Session is created at sign-in and discarded at sign-out. Callers that read
// or mutate the collections must hold the session lock.
type Session struct {
	ID       string // Session id carried by the bearer token
	Username string // Signed-in user

	mu         sync.Mutex
	Customers  []domain.Customer // Customers table
	Deals      []domain.Deal     // Deals table
	Activities []domain.Activity // Activities table

	// Warnings lists collections that could not be loaded and started empty
	Warnings []string
}

// Lock acquires the session for one read-modify-persist unit of work
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }
