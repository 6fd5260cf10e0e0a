// Package storage persists the credential store and per-user partitions as
// JSON documents under a single data root.
package storage

import (
	"encoding/json" // JSON encoding/decoding
	"os"            // File system operations
	"path/filepath" // Path joining
	"sync"          // Write locks

	"github.com/pkg/errors" // Error wrapping
)

const (
	dirPerm  os.FileMode = 0o770 // Partition directories
	filePerm os.FileMode = 0o660 // JSON documents
)

// ErrCorrupt marks a document that exists but cannot be read or decoded.
var ErrCorrupt = errors.New("corrupt document")

// Store is the on-disk layout rooted at a data directory:
//
//	<root>/users.json
//	<root>/<username>/{customers,deals,activities}.json
type Store struct {
	root string // Data directory

	usersMu sync.Mutex // Guards users.json
	locks   sync.Map   // username -> *sync.Mutex
}

// New returns a Store rooted at dir. Nothing is created until first use.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the data directory.
func (s *Store) Root() string {
	return s.root
}

// userLock serialises file writes within one user's partition.
func (s *Store) userLock(username string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// readJSON decodes path into dst. It reports false when the file does not exist.
func readJSON(path string, dst any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // Missing is not an error
		}
		return false, errors.Wrapf(ErrCorrupt, "read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrapf(ErrCorrupt, "decode %s: %v", path, err)
	}
	return true, nil
}

// writeJSON encodes v and replaces path with it atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ") // Human-readable documents
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return writeFileAtomic(path, data, filePerm)
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil { // Flush before the rename makes it visible
		_ = tmp.Close()
		return errors.Wrapf(err, "sync %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil { // Atomic replace
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}
