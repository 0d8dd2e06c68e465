// Package credstore persists the OAuth client registration and the SDM project
// identifier with owner-only permissions, and hands out the token file location
// used by the auth package.
package credstore
