package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/telekom/nestctl/pkg/nestctl/auth"
	"github.com/telekom/nestctl/pkg/nestctl/client"
	"github.com/telekom/nestctl/pkg/nestctl/config"
	"github.com/telekom/nestctl/pkg/nestctl/credstore"
	"github.com/telekom/nestctl/pkg/ratelimit"
	"github.com/telekom/nestctl/pkg/version"
)

func buildStore(rt *runtimeState) *credstore.FileStore {
	return credstore.NewFileStore(rt.credentialsDir)
}

func buildTokenStore(rt *runtimeState) (auth.TokenStore, error) {
	switch rt.TokenStorage() {
	case config.TokenStorageFile:
		// The authenticator defaults to tokens.json next to the credentials.
		return nil, nil
	case config.TokenStorageKeychain:
		return auth.NewKeychainTokenStore(), nil
	default:
		return nil, fmt.Errorf("unsupported token storage: %s (use file or keychain)", rt.TokenStorage())
	}
}

func buildAuthenticator(rt *runtimeState, store credstore.Store, extra ...auth.Option) (*auth.Authenticator, error) {
	tokens, err := buildTokenStore(rt)
	if err != nil {
		return nil, err
	}
	settings := rt.settings()
	options := []auth.Option{
		auth.WithAuthority(settings.AuthorityOrDefault()),
		auth.WithScopes(settings.ScopesOrDefault()),
		auth.WithHTTPClient(&http.Client{Timeout: settings.TimeoutOrDefault()}),
		auth.WithLoginTimeout(settings.LoginTimeoutOrDefault()),
		auth.WithOutput(rt.Writer()),
		auth.WithLogger(rt.log),
	}
	if tokens != nil {
		options = append(options, auth.WithTokenStore(tokens))
	}
	switch {
	case rt.noBrowser:
		options = append(options, auth.WithBrowser(nil))
	case rt.browser != nil:
		options = append(options, auth.WithBrowser(rt.browser))
	}
	return auth.New(store, append(options, extra...)...), nil
}

func buildClient(ctx context.Context, rt *runtimeState) (*client.Client, error) {
	store := buildStore(rt)
	authenticator, err := buildAuthenticator(rt, store)
	if err != nil {
		return nil, err
	}
	projectID, err := store.LoadProjectID()
	if err != nil {
		return nil, err
	}
	httpClient, err := authenticator.Client(ctx)
	if err != nil {
		return nil, err
	}
	settings := rt.settings()
	limit := ratelimit.DefaultSDMConfig()
	if settings.RateLimit > 0 {
		limit.Rate = settings.RateLimit
	}
	if settings.RateBurst > 0 {
		limit.Burst = settings.RateBurst
	}
	return client.New(
		client.WithHTTPClient(httpClient),
		client.WithBaseURL(rt.APIEndpoint()),
		client.WithProjectID(projectID),
		client.WithUserAgent(version.UserAgent()),
		client.WithTimeout(settings.TimeoutOrDefault()),
		client.WithRateLimit(limit),
		client.WithLogger(rt.log),
	)
}
