package session

import (
	"context"                     // Registry calls
	"crm_system/internal/domain"  // Record types
	"crm_system/internal/storage" // Partition access
	"crm_system/internal/utils"   // Session registry
	"fmt"                         // Warning messages
	"path/filepath"               // Quarantined file name
	"sync"                        // Restore lock
	"time"                        // Session lifetime

	"github.com/google/uuid"                // Session ids
	gocache "github.com/patrickmn/go-cache" // Live session table
	"github.com/pkg/errors"                 // Error wrapping
	"github.com/sirupsen/logrus"            // Logrus for structured logging
)

// ErrNoSession is returned for ids that were never opened, were closed, or expired
var ErrNoSession = errors.New("session not found")

const registryPrefix = "session:" // Registry key prefix

// Manager owns the live sessions of the process. With a registry configured,
// open session ids survive a restart and are reloaded from the partition on
// first use.
type Manager struct {
	store    *storage.Store // Partition storage
	registry utils.Cache    // Optional session registry
	ttl      time.Duration  // Zero keeps sessions until Close

	live   *gocache.Cache // Session id -> *Session
	revive sync.Mutex     // Serialises restores from the registry
}

// NewManager returns a Manager loading partitions from store. registry may be
// nil. A zero ttl keeps sessions until Close.
func NewManager(store *storage.Store, registry utils.Cache, ttl time.Duration) *Manager {
	return &Manager{
		store:    store,
		registry: registry,
		ttl:      ttl,
		live:     gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (m *Manager) expiry() time.Duration {
	if m.ttl <= 0 {
		return gocache.NoExpiration
	}
	return m.ttl
}

// Open starts a session for an authenticated username, loading its partition
func (m *Manager) Open(ctx context.Context, username string) (*Session, error) {
	s, err := m.load(uuid.NewString(), username)
	if err != nil {
		return nil, err
	}
	if m.registry != nil {
		if err := m.registry.Set(ctx, registryPrefix+s.ID, username, m.ttl); err != nil {
			return nil, errors.Wrap(err, "register session")
		}
	}
	m.live.Set(s.ID, s, m.expiry())

	logrus.WithFields(logrus.Fields{
		"username":   username,          // Signed-in user
		"session_id": s.ID,              // New session
		"customers":  len(s.Customers),  // Loaded customers
		"deals":      len(s.Deals),      // Loaded deals
		"activities": len(s.Activities), // Loaded activities
	}).Info("Session opened")
	return s, nil
}

// Get returns the live session for id
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if v, ok := m.live.Get(id); ok {
		return v.(*Session), nil
	}
	if m.registry == nil {
		return nil, ErrNoSession
	}

	m.revive.Lock()
	defer m.revive.Unlock()
	if v, ok := m.live.Get(id); ok {
		return v.(*Session), nil // Restored while we waited
	}

	var username string
	found, err := m.registry.Get(ctx, registryPrefix+id, &username)
	if err != nil {
		return nil, errors.Wrap(err, "lookup session")
	}
	if !found {
		return nil, ErrNoSession
	}
	s, err := m.load(id, username)
	if err != nil {
		return nil, err
	}
	m.live.Set(id, s, m.expiry())
	logrus.WithFields(logrus.Fields{"username": username, "session_id": id}).Info("Session restored")
	return s, nil
}

// Close ends the session and drops all of its state
func (m *Manager) Close(ctx context.Context, id string) error {
	m.live.Delete(id)
	if m.registry != nil {
		if err := m.registry.Delete(ctx, registryPrefix+id); err != nil {
			return errors.Wrap(err, "unregister session")
		}
	}
	logrus.WithField("session_id", id).Info("Session closed")
	return nil
}

func (m *Manager) load(id, username string) (*Session, error) {
	s := &Session{ID: id, Username: username}
	var err error
	if s.Customers, err = loadOrReset[domain.Customer](m.store, s, storage.Customers); err != nil {
		return nil, err
	}
	if s.Deals, err = loadOrReset[domain.Deal](m.store, s, storage.Deals); err != nil {
		return nil, err
	}
	if s.Activities, err = loadOrReset[domain.Activity](m.store, s, storage.Activities); err != nil {
		return nil, err
	}
	return s, nil
}

// loadOrReset loads one collection for s. A corrupt file is moved aside and
// the collection starts empty with a warning on the session.
func loadOrReset[T any](store *storage.Store, s *Session, name storage.Collection) ([]T, error) {
	records, err := storage.LoadCollection[T](store, s.Username, name)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, storage.ErrCorrupt) {
		return nil, errors.Wrapf(err, "load %s", name)
	}

	log := logrus.WithFields(logrus.Fields{
		"username":   s.Username,  // Partition owner
		"collection": name,        // Unreadable collection
		"error":      err.Error(), // Decode or read error
	})
	moved, qerr := store.QuarantineCollection(s.Username, name)
	if qerr != nil {
		log = log.WithField("quarantine_error", qerr.Error())
	} else if moved != "" {
		log = log.WithField("moved_to", moved)
	}
	log.Warn("Collection unreadable, starting empty")

	msg := fmt.Sprintf("Error loading data: %s.json could not be read, starting with no %s", name, name)
	if qerr == nil && moved != "" {
		msg += fmt.Sprintf(" (kept as %s)", filepath.Base(moved))
	}
	s.Warnings = append(s.Warnings, msg)
	return []T{}, nil
}
