// Package ratelimit provides the client-side token-bucket limiter that keeps
// outgoing Smart Device Management calls inside the provider's quota.
package ratelimit
