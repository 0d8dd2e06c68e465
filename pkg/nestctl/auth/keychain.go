package auth

import (
	"errors"

	"github.com/zalando/go-keyring"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

const (
	keychainService = "nestctl"
	keychainUser    = "tokens"
)

// KeychainTokenStore keeps the token set in the OS keychain.
type KeychainTokenStore struct {
	Service string
	User    string
}

func NewKeychainTokenStore() *KeychainTokenStore {
	return &KeychainTokenStore{Service: keychainService, User: keychainUser}
}

func (s *KeychainTokenStore) Name() string { return "keychain" }

func (s *KeychainTokenStore) Load() (StoredToken, bool, error) {
	secret, err := keyring.Get(s.Service, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return StoredToken{}, false, nil
		}
		return StoredToken{}, false, errdefs.Wrap(errdefs.ErrIO, err, "failed to read keychain")
	}
	token, err := decodeToken([]byte(secret))
	if err != nil {
		return StoredToken{}, false, err
	}
	return token, true, nil
}

func (s *KeychainTokenStore) Save(token StoredToken) error {
	content, err := encodeToken(token)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.Service, s.User, string(content)); err != nil {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to write keychain")
	}
	return nil
}

func (s *KeychainTokenStore) Delete() error {
	if err := keyring.Delete(s.Service, s.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to delete keychain entry")
	}
	return nil
}
