// Package session persists the vendor auth session and device identity
// between runs. The lifecycle is explicit: load at startup, replace on login,
// clear on logout.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"

	"pontoctl/internal/model"
)

const (
	sessionFile = "session.json"
	deviceFile  = "device_id"
)

// Store reads and writes the serialized auth session in the state dir.
type Store struct {
	dir string
}

// NewStore creates a session store rooted in stateDir.
func NewStore(stateDir string) *Store {
	return &Store{dir: stateDir}
}

func (s *Store) path() string { return filepath.Join(s.dir, sessionFile) }

// Load returns the persisted session, or nil when none exists.
func (s *Store) Load() (*model.Session, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save replaces the persisted session.
func (s *Store) Save(sess *model.Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), b, 0o600)
}

// Clear removes the persisted session. Missing state is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DeviceID returns the persistent device identifier, generating and saving
// one on first use. The vendor expects the same uuid across punches from one
// installation.
func (s *Store) DeviceID() (string, error) {
	path := filepath.Join(s.dir, deviceFile)
	if b, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id.String()), 0o600); err != nil {
		return "", err
	}
	return id.String(), nil
}
