package credstore

import (
	"os"
	"strings"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

// MemoryStore keeps the registration and project ID in memory. The token path
// is still a real location so token persistence can be exercised.
type MemoryStore struct {
	Registration []byte
	ProjectID    string
	TokenPath    string
}

func (m *MemoryStore) Init(clientSecretSource, projectID string) error {
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
	m.Registration = data
	m.ProjectID = projectID
	return nil
}

func (m *MemoryStore) LoadRegistration() (*Registration, error) {
	if len(m.Registration) == 0 {
		return nil, errdefs.New(errdefs.ErrNotAuthenticated, "not logged in; %s", loginHint)
	}
	reg, err := ParseRegistration(m.Registration)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrIO, err, "stored client registration is corrupt")
	}
	return reg, nil
}

func (m *MemoryStore) LoadProjectID() (string, error) {
	if m.ProjectID == "" {
		return "", errdefs.New(errdefs.ErrNotAuthenticated, "no project ID saved; %s", loginHint)
	}
	return m.ProjectID, nil
}

func (m *MemoryStore) TokenFilePath() (string, error) {
	if m.TokenPath == "" {
		return "", errdefs.New(errdefs.ErrIO, "token path is not set")
	}
	return m.TokenPath, nil
}

func (m *MemoryStore) Clear() error {
	m.Registration = nil
	m.ProjectID = ""
	return nil
}
