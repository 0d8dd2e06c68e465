// Package errdefs defines the error kinds surfaced by the nestctl core. Callers
// classify failures with errors.Is against the exported sentinels.
package errdefs
