package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigDir(t *testing.T) {
	t.Run("uses NESTCTL_CONFIG_DIR when set", func(t *testing.T) {
		t.Setenv("NESTCTL_CONFIG_DIR", "/custom/nestctl")
		assert.Equal(t, "/custom/nestctl", DefaultConfigDir())
	})

	t.Run("falls back to user config dir", func(t *testing.T) {
		t.Setenv("NESTCTL_CONFIG_DIR", "")
		result := DefaultConfigDir()
		assert.True(t, strings.HasSuffix(result, "nestctl"), "unexpected dir: %s", result)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("uses NESTCTL_CONFIG env var when set", func(t *testing.T) {
		t.Setenv("NESTCTL_CONFIG", "/custom/path/config.yaml")
		assert.Equal(t, "/custom/path/config.yaml", DefaultConfigPath())
	})

	t.Run("lives in the config dir", func(t *testing.T) {
		t.Setenv("NESTCTL_CONFIG", "")
		t.Setenv("NESTCTL_CONFIG_DIR", "/tmp/nestctl-test")
		assert.Equal(t, filepath.Join("/tmp/nestctl-test", "config.yaml"), DefaultConfigPath())
	})
}
