package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Registration is an OAuth client registration as issued by the provider console.
type Registration struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri,omitempty"`
	TokenURI     string   `json:"token_uri,omitempty"`
	RedirectURIs []string `json:"redirect_uris,omitempty"`

	// Raw holds the registration exactly as it was supplied.
	Raw []byte `json:"-"`
}

type registrationFile struct {
	Installed *Registration `json:"installed,omitempty"`
	Web       *Registration `json:"web,omitempty"`
}

// ParseRegistration decodes a client secret document. Both the "installed" and
// the "web" layouts are accepted.
func ParseRegistration(data []byte) (*Registration, error) {
	var file registrationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode client registration: %w", err)
	}
	reg := file.Installed
	if reg == nil {
		reg = file.Web
	}
	if reg == nil {
		return nil, errors.New("client registration has neither an installed nor a web section")
	}
	if reg.ClientID == "" {
		return nil, errors.New("client registration missing client_id")
	}
	reg.Raw = append([]byte(nil), data...)
	return reg, nil
}
