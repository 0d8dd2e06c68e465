// Package system holds process-wide helpers shared by nestctl packages, such as
// logger construction and structured logging fields.
package system
