package credstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

const (
	ClientSecretFile = "client_secret.json"
	ProjectIDFile    = "project_id"
	TokenFile        = "tokens.json"

	dirMode  os.FileMode = 0o700
	fileMode os.FileMode = 0o600
)

const loginHint = "run `nestctl auth login` first"

// chmod is swapped in tests to simulate filesystems that refuse to tighten modes.
var chmod = os.Chmod

// Store owns the on-disk client registration and project identifier.
type Store interface {
	Init(clientSecretSource, projectID string) error
	LoadRegistration() (*Registration, error)
	LoadProjectID() (string, error)
	TokenFilePath() (string, error)
	Clear() error
}

// FileStore keeps secrets in a single owner-only directory.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Init(clientSecretSource, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	data, err := os.ReadFile(clientSecretSource)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to read client secret %s", clientSecretSource)
	}
	if _, err := ParseRegistration(data); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "invalid client secret %s", clientSecretSource)
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := writeSecret(filepath.Join(s.Dir, ClientSecretFile), data); err != nil {
		return err
	}
	return writeSecret(filepath.Join(s.Dir, ProjectIDFile), []byte(projectID))
}

func (s *FileStore) LoadRegistration() (*Registration, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, ClientSecretFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.New(errdefs.ErrNotAuthenticated, "not logged in; %s", loginHint)
		}
		return nil, errdefs.Wrap(errdefs.ErrIO, err, "failed to read client registration")
	}
	reg, err := ParseRegistration(data)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrIO, err, "stored client registration is corrupt")
	}
	return reg, nil
}

func (s *FileStore) LoadProjectID() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, ProjectIDFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errdefs.New(errdefs.ErrNotAuthenticated, "no project ID saved; %s", loginHint)
		}
		return "", errdefs.Wrap(errdefs.ErrIO, err, "failed to read project ID")
	}
	projectID := strings.TrimSpace(string(data))
	if err := ValidateProjectID(projectID); err != nil {
		return "", err
	}
	return projectID, nil
}

func (s *FileStore) TokenFilePath() (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, TokenFile), nil
}

func (s *FileStore) Clear() error {
	for _, name := range []string{ClientSecretFile, ProjectIDFile} {
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
			return errdefs.Wrap(errdefs.ErrIO, err, "failed to remove %s", name)
		}
	}
	return nil
}

func (s *FileStore) ensureDir() error {
	if s.Dir == "" {
		return errdefs.New(errdefs.ErrIO, "credential directory is not set")
	}
	if err := os.MkdirAll(s.Dir, dirMode); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to create %s", s.Dir)
	}
	// MkdirAll leaves an existing directory's mode alone and is subject to umask.
	if err := chmod(s.Dir, dirMode); err != nil {
		return errdefs.Wrap(errdefs.ErrPermission, err, "failed to restrict %s", s.Dir)
	}
	return nil
}

// ValidateProjectID rejects identifiers that cannot be embedded in a device path.
func ValidateProjectID(projectID string) error {
	if projectID == "" {
		return errdefs.New(errdefs.ErrInvalidArgument, "project ID must not be empty")
	}
	if strings.Contains(projectID, "/") {
		return errdefs.New(errdefs.ErrInvalidArgument, "project ID %q must not contain '/'", projectID)
	}
	return nil
}
