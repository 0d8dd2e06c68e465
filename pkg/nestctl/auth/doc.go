// Package auth runs the installed-application OAuth2 login against the device
// access provider and keeps the resulting tokens fresh across invocations, with
// token caching via a local file or the OS keychain.
package auth
