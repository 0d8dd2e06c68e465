// Package cmd wires the nestctl cobra command tree. It is the only layer that
// produces user-facing text; the packages below it return typed errors.
package cmd
