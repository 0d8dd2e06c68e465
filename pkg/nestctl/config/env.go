package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the NESTCTL_* environment overrides.
type Env struct {
	Output       string `envconfig:"OUTPUT"`
	TokenStorage string `envconfig:"TOKEN_STORAGE"`
	APIEndpoint  string `envconfig:"API_ENDPOINT"`
	Verbose      bool   `envconfig:"VERBOSE"`
	NoBrowser    bool   `envconfig:"NO_BROWSER"`
}

func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("nestctl", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}
