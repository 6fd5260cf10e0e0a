package storage

import (
	"crm_system/internal/domain" // User records
	"os"                         // File system operations
	"path/filepath"              // Path joining

	"github.com/pkg/errors" // Error wrapping
)

const usersFile = "users.json" // Credential store file under the data root

func (s *Store) usersPath() string {
	return filepath.Join(s.root, usersFile)
}

// LoadUsers reads the credential store. A missing file is an empty store.
func (s *Store) LoadUsers() (domain.Users, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.loadUsers()
}

// SaveUsers replaces the credential store with users.
func (s *Store) SaveUsers(users domain.Users) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.saveUsers(users)
}

// UpdateUsers runs fn over the current credential store and saves the result
// if fn returns nil. The whole read-modify-write holds the store lock.
func (s *Store) UpdateUsers(fn func(domain.Users) error) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	if err := fn(users); err != nil {
		return err // Nothing written
	}
	return s.saveUsers(users) // Replace the whole document
}

func (s *Store) loadUsers() (domain.Users, error) {
	users := domain.Users{}
	if _, err := readJSON(s.usersPath(), &users); err != nil {
		return nil, err
	}
	if users == nil { // file held "null"
		users = domain.Users{}
	}
	return users, nil
}

func (s *Store) saveUsers(users domain.Users) error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil { // Data root may not exist yet
		return errors.Wrapf(err, "mkdir %s", s.root)
	}
	if users == nil {
		users = domain.Users{}
	}
	return writeJSON(s.usersPath(), users)
}
