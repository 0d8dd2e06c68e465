// Package config handles the nestctl settings file, its default location and
// the NESTCTL_* environment overlay.
package config
