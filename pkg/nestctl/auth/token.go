package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/telekom/nestctl/pkg/nestctl/credstore"
	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

type StoredToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
}

func newStoredToken(token *oauth2.Token) StoredToken {
	stored := StoredToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		stored.IDToken = idToken
	}
	return stored
}

func (t StoredToken) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// ExpiresWithin reports whether the access token is missing or expires within d.
// A zero expiry means the provider did not announce one.
func (t StoredToken) ExpiresWithin(now time.Time, d time.Duration) bool {
	if t.AccessToken == "" {
		return true
	}
	if t.Expiry.IsZero() {
		return false
	}
	return t.Expiry.Sub(now) <= d
}

// TokenStore persists a single token set.
type TokenStore interface {
	Load() (StoredToken, bool, error)
	Save(token StoredToken) error
	Delete() error
	Name() string
}

// FileTokenStore keeps the token set as JSON in one owner-only file.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Name() string { return "file" }

func (s *FileTokenStore) Load() (StoredToken, bool, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return StoredToken{}, false, nil
		}
		return StoredToken{}, false, errdefs.Wrap(errdefs.ErrIO, err, "failed to read token file")
	}
	token, err := decodeToken(content)
	if err != nil {
		return StoredToken{}, false, err
	}
	return token, true, nil
}

func (s *FileTokenStore) Save(token StoredToken) error {
	content, err := encodeToken(token)
	if err != nil {
		return err
	}
	return credstore.WriteSecretFile(s.Path, content)
}

func (s *FileTokenStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return errdefs.Wrap(errdefs.ErrIO, err, "failed to remove token file")
	}
	return nil
}

func encodeToken(token StoredToken) ([]byte, error) {
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("refusing to persist an empty token")
	}
	content, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	return content, nil
}

func decodeToken(content []byte) (StoredToken, error) {
	var token StoredToken
	if err := json.Unmarshal(content, &token); err != nil {
		return StoredToken{}, errdefs.Wrap(errdefs.ErrNotAuthenticated, err, "stored token is unreadable; run `nestctl auth login` again")
	}
	return token, nil
}
