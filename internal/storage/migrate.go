package storage

import (
	"crm_system/internal/domain" // Empty credential store
	"os"                         // File system operations

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Init prepares the data root: the directory itself and an empty
// credential store if none exists yet. Existing data is left untouched.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return errors.Wrapf(err, "mkdir %s", s.root)
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	var users domain.Users
	found, err := readJSON(s.usersPath(), &users)
	if err != nil {
		return err // Refuse to replace a corrupt store
	}
	if found {
		logrus.WithField("users", len(users)).Info("Credential store already present")
		return nil
	}
	if err := s.saveUsers(domain.Users{}); err != nil { // Write "{}"
		return err
	}
	logrus.WithField("path", s.usersPath()).Info("Created empty credential store")
	return nil
}
