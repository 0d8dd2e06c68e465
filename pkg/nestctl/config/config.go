package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	DefaultAPIEndpoint  = "https://smartdevicemanagement.googleapis.com/"
	DefaultAuthority    = "https://accounts.google.com"
	SDMScope            = "https://www.googleapis.com/auth/sdm.service"
	DefaultTimeout      = 30 * time.Second
	DefaultLoginTimeout = 5 * time.Minute

	TokenStorageFile     = "file"
	TokenStorageKeychain = "keychain"
)

// DefaultScopes asks for an id_token alongside SDM access so `auth status`
// can show who is logged in.
var DefaultScopes = []string{"openid", "email", SDMScope}

type Config struct {
	Version  string   `yaml:"version"`
	Settings Settings `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string   `yaml:"output-format,omitempty"`
	TokenStorage string   `yaml:"token-storage,omitempty"`
	Timeout      string   `yaml:"timeout,omitempty"`
	LoginTimeout string   `yaml:"login-timeout,omitempty"`
	APIEndpoint  string   `yaml:"api-endpoint,omitempty"`
	Authority    string   `yaml:"authority,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`
	RateLimit    float64  `yaml:"rate-limit,omitempty"`
	RateBurst    int      `yaml:"rate-burst,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Settings: Settings{
			OutputFormat: "table",
			TokenStorage: TokenStorageFile,
		},
	}
}

// Load reads the settings file. A missing file yields the default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Version != VersionV1 {
		return fmt.Errorf("unsupported config version: %s", c.Version)
	}
	switch strings.ToLower(c.Settings.TokenStorage) {
	case "", TokenStorageFile, TokenStorageKeychain:
	default:
		return fmt.Errorf("unsupported token storage: %s", c.Settings.TokenStorage)
	}
	if _, err := parseDuration(c.Settings.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := parseDuration(c.Settings.LoginTimeout); err != nil {
		return fmt.Errorf("invalid login-timeout: %w", err)
	}
	if c.Settings.RateLimit < 0 || c.Settings.RateBurst < 0 {
		return errors.New("rate-limit and rate-burst must not be negative")
	}
	return nil
}

func (s Settings) TimeoutOrDefault() time.Duration {
	if d, err := parseDuration(s.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

func (s Settings) LoginTimeoutOrDefault() time.Duration {
	if d, err := parseDuration(s.LoginTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultLoginTimeout
}

func (s Settings) APIEndpointOrDefault() string {
	if s.APIEndpoint != "" {
		return s.APIEndpoint
	}
	return DefaultAPIEndpoint
}

func (s Settings) AuthorityOrDefault() string {
	if s.Authority != "" {
		return s.Authority
	}
	return DefaultAuthority
}

func (s Settings) ScopesOrDefault() []string {
	if len(s.Scopes) > 0 {
		return s.Scopes
	}
	return append([]string(nil), DefaultScopes...)
}

func parseDuration(value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
