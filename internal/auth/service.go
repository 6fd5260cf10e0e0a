// Package auth implements sign-up and sign-in over the shared credential store.
package auth

import (
	"crm_system/internal/domain" // User records
	"regexp"                     // Username pattern
	"strings"                    // Username normalization
	"sync"                       // Dummy hash once
	"time"                       // Sign-up timestamps

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username must be 1-32 letters, digits or underscores")
	ErrInvalidPassword    = errors.New("password must be 8-72 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// CredentialStore is the persistence the auth service needs.
type CredentialStore interface {
	LoadUsers() (domain.Users, error)
	UpdateUsers(fn func(domain.Users) error) error
}

// Service validates and records credentials.
type Service struct {
	store CredentialStore
	cost  int
	now   func() time.Time

	dummyOnce sync.Once
	dummy     string
}

// NewService returns a Service hashing with the given bcrypt cost.
func NewService(store CredentialStore, cost int) *Service {
	return &Service{store: store, cost: cost, now: time.Now}
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72 // bcrypt ignores bytes past 72
}

// SignUp creates a user and returns the normalized username. An existing
// username, compared case-insensitively, is rejected and left as is.
func (s *Service) SignUp(username, password string) (string, error) {
	name := NormalizeUsername(username)
	if !usernamePattern.MatchString(name) {
		return "", ErrInvalidUsername
	}
	if !isValidPassword(password) {
		return "", ErrInvalidPassword
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	err = s.store.UpdateUsers(func(users domain.Users) error {
		if _, ok := users[name]; ok {
			return ErrUserExists
		}
		users[name] = domain.User{
			Password:  hash,
			CreatedAt: s.now().UTC().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logrus.WithField("username", name).Info("User registered")
	return name, nil
}

// SignIn checks credentials and returns the normalized username. Unknown
// users and wrong passwords both fail with ErrInvalidCredentials.
func (s *Service) SignIn(username, password string) (string, error) {
	name := NormalizeUsername(username)
	users, err := s.store.LoadUsers()
	if err != nil {
		return "", errors.Wrap(err, "load users")
	}

	user, ok := users[name]
	if !ok {
		// Spend the same bcrypt work as a real comparison.
		VerifyPassword(s.dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if !VerifyPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return name, nil
}

func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = HashPassword("not-a-real-password", s.cost)
	})
	return s.dummy
}
