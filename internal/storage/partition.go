package storage

import (
	"fmt"           // Quarantine file names
	"os"            // File system operations
	"path/filepath" // Path joining
	"strings"       // Separator checks
	"time"          // Unique quarantine suffix

	"github.com/pkg/errors" // Error wrapping
)

// Collection names one JSON array inside a partition.
type Collection string

const (
	Customers  Collection = "customers"  // customers.json
	Deals      Collection = "deals"      // deals.json
	Activities Collection = "activities" // activities.json
)

var (
	// ErrInvalidPartition is returned for usernames that cannot name a directory under the root.
	ErrInvalidPartition = errors.New("invalid partition name")
	// ErrUnknownCollection is returned for collection names outside the fixed set.
	ErrUnknownCollection = errors.New("unknown collection")
)

func (c Collection) valid() bool {
	return c == Customers || c == Deals || c == Activities
}

func (c Collection) file() string {
	return string(c) + ".json"
}

func validPartition(username string) bool {
	if username == "" || username == "." || username == ".." {
		return false
	}
	return !strings.ContainsAny(username, `/\`) && filepath.Base(username) == username // One path element only
}

// PartitionDir returns the directory holding username's collections,
// creating it if absent.
func (s *Store) PartitionDir(username string) (string, error) {
	if !validPartition(username) {
		return "", errors.Wrapf(ErrInvalidPartition, "%q", username)
	}
	dir := filepath.Join(s.root, username)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "mkdir %s", dir)
	}
	return dir, nil
}

func (s *Store) collectionPath(username string, name Collection) (string, error) {
	if !name.valid() {
		return "", errors.Wrapf(ErrUnknownCollection, "%q", name)
	}
	dir, err := s.PartitionDir(username)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name.file()), nil
}

// LoadCollection reads one collection of username's partition. A missing
// backing file yields an empty, non-nil slice.
func LoadCollection[T any](s *Store, username string, name Collection) ([]T, error) {
	path, err := s.collectionPath(username, name)
	if err != nil {
		return nil, err
	}
	var out []T
	if _, err := readJSON(path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{} // Missing file or "null"
	}
	return out, nil
}

// SaveCollection overwrites one collection of username's partition
// atomically. Writes to the same partition are serialised.
func SaveCollection[T any](s *Store, username string, name Collection, records []T) error {
	path, err := s.collectionPath(username, name)
	if err != nil {
		return err
	}
	if records == nil {
		records = []T{} // Always write an array
	}

	mu := s.userLock(username)
	mu.Lock()
	defer mu.Unlock()
	return writeJSON(path, records)
}

// QuarantineCollection moves an unreadable collection file aside as
// <name>.json.corrupt so the next save cannot overwrite it. It returns the
// new path, or "" when there was no file to move.
func (s *Store) QuarantineCollection(username string, name Collection) (string, error) {
	path, err := s.collectionPath(username, name)
	if err != nil {
		return "", err
	}

	mu := s.userLock(username)
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	dst := path + ".corrupt"
	if _, err := os.Stat(dst); err == nil {
		dst = fmt.Sprintf("%s.%d.corrupt", path, time.Now().UnixNano()) // keep the earlier copy
	}
	if err := os.Rename(path, dst); err != nil {
		return "", errors.Wrapf(err, "quarantine %s", path)
	}
	return dst, nil
}
