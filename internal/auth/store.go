package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
)

// Store loads and persists a single [models.Credential].
type Store interface {
	// Load returns the stored credential, or nil and no error when none exists.
	Load() (*models.Credential, error)
	// Persist replaces the stored credential.
	Persist(*models.Credential) error
}

var _ Store = (*FileStore)(nil)

// FileStore keeps the credential as JSON in a single file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (*models.Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read credential %s: %v", shared.ErrIO, s.path, err)
	}

	var cred models.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: malformed credential %s: %v", shared.ErrIO, s.path, err)
	}
	return &cred, nil
}

func (s *FileStore) Persist(cred *models.Credential) error {
	if cred == nil {
		return fmt.Errorf("%w: credential cannot be nil", shared.ErrInvalidArgument)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	return shared.WriteFileAtomic(s.path, data, 0600)
}

// Remove deletes the credential file. A missing file is not an error.
func (s *FileStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove credential %s: %v", shared.ErrIO, s.path, err)
	}
	return nil
}
