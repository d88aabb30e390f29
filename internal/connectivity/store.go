package connectivity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"codeberg.org/mikkl/hwmond/internal/errors"
)

const (
	storeDirPerm  = 0o755
	storeFilePerm = 0o600
)

// fileStore persists credentials as a JSON file. Written atomically via a
// temp file so a power cut mid-save cannot corrupt the stored secrets.
type fileStore struct {
	path string
}

func NewFileStore(path string) CredentialStore {
	return &fileStore{path: path}
}

func (s *fileStore) Load() (Credentials, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, errFactory.New(ErrNoCredentials)
		}

		return Credentials{}, errFactory.Wrap(ErrStoreAccess, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, errFactory.Wrap(ErrStoreAccess, err)
	}

	if creds.SSID == "" {
		return Credentials{}, errFactory.New(ErrNoCredentials)
	}

	return creds, nil
}

func (s *fileStore) Save(creds Credentials) error {
	errFactory := errors.New()

	if creds.ID == "" {
		creds.ID = uuid.NewString()
	}
	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), storeDirPerm); err != nil {
		return errFactory.Wrap(ErrStoreAccess, err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return errFactory.Wrap(ErrStoreAccess, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, storeFilePerm); err != nil {
		return errFactory.Wrap(ErrStoreAccess, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errFactory.Wrap(ErrStoreAccess, err)
	}

	return nil
}
