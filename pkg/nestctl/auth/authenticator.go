package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"k8s.io/utils/ptr"

	"github.com/telekom/nestctl/pkg/metrics"
	"github.com/telekom/nestctl/pkg/nestctl/config"
	"github.com/telekom/nestctl/pkg/nestctl/credstore"
	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

// refreshSkew is how close to expiry an access token may get before it is
// refreshed up front.
const refreshSkew = 2 * time.Minute

type State int

const (
	StateUninitialized State = iota
	StateAwaitingUserConsent
	StateAuthenticated
	StateExpired
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateAwaitingUserConsent:
		return "AwaitingUserConsent"
	case StateAuthenticated:
		return "Authenticated"
	case StateExpired:
		return "Expired"
	case StateRefreshing:
		return "Refreshing"
	default:
		return "Unknown"
	}
}

// Authenticator owns the in-memory token set for the lifetime of a process and
// is the only writer of the persisted tokens.
type Authenticator struct {
	store        credstore.Store
	tokens       TokenStore
	authority    string
	scopes       []string
	httpClient   *http.Client
	loginTimeout time.Duration
	openBrowser  func(string) error
	out          io.Writer
	log          *zap.SugaredLogger
	now          func() time.Time
	state        State
}

type Option func(*Authenticator)

// WithTokenStore overrides the default file token store next to the credentials.
func WithTokenStore(tokens TokenStore) Option {
	return func(a *Authenticator) { a.tokens = tokens }
}

func WithAuthority(authority string) Option {
	return func(a *Authenticator) {
		if authority != "" {
			a.authority = authority
		}
	}
}

func WithScopes(scopes []string) Option {
	return func(a *Authenticator) {
		if len(scopes) > 0 {
			a.scopes = scopes
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *Authenticator) {
		if client != nil {
			a.httpClient = client
		}
	}
}

func WithLoginTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.loginTimeout = d
		}
	}
}

// WithBrowser sets the function used to open the consent URL. nil only prints it.
func WithBrowser(open func(string) error) Option {
	return func(a *Authenticator) { a.openBrowser = open }
}

func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) {
		if w != nil {
			a.out = w
		}
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Authenticator) {
		if log != nil {
			a.log = log
		}
	}
}

func New(store credstore.Store, opts ...Option) *Authenticator {
	a := &Authenticator{
		store:        store,
		authority:    config.DefaultAuthority,
		scopes:       append([]string(nil), config.DefaultScopes...),
		httpClient:   &http.Client{Timeout: config.DefaultTimeout},
		loginTimeout: config.DefaultLoginTimeout,
		openBrowser:  openBrowser,
		out:          os.Stdout,
		log:          zap.NewNop().Sugar(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authenticator) State() State {
	return a.state
}

// TokenSource returns a token source backed by the persisted token set. An
// expired access token is refreshed once before returning. It never starts the
// interactive flow.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	reg, err := a.store.LoadRegistration()
	if err != nil {
		return nil, err
	}
	tokens, err := a.tokenStore()
	if err != nil {
		return nil, err
	}
	stored, ok, err := tokens.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errdefs.New(errdefs.ErrNotAuthenticated, "no saved tokens; run `nestctl auth login` first")
	}
	oauthCfg, err := a.oauthConfig(ctx, reg, "")
	if err != nil {
		return nil, err
	}
	stored, _, err = a.ensureFresh(ctx, oauthCfg, tokens, stored)
	if err != nil {
		return nil, err
	}
	a.state = StateAuthenticated
	return &persistingTokenSource{
		base:  oauthCfg.TokenSource(a.httpContext(ctx), stored.OAuth2Token()),
		store: tokens,
		last:  stored,
		log:   a.log,
	}, nil
}

// Client returns an HTTP client that attaches a valid bearer token to every
// request.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(a.httpContext(ctx), ts), nil
}

type TokenStatus struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	Storage       string     `json:"storage" yaml:"storage"`
	ProjectID     string     `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Expiry        *time.Time `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	Refreshed     bool       `json:"refreshed" yaml:"refreshed"`
	Identity      string     `json:"identity,omitempty" yaml:"identity,omitempty"`
}

// Status reports the persisted login, refreshing the access token if needed.
func (a *Authenticator) Status(ctx context.Context) (*TokenStatus, error) {
	tokens, err := a.tokenStore()
	if err != nil {
		return nil, err
	}
	status := &TokenStatus{Storage: tokens.Name()}
	stored, ok, err := tokens.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return status, nil
	}
	reg, err := a.store.LoadRegistration()
	if err != nil {
		if errors.Is(err, errdefs.ErrNotAuthenticated) {
			return status, nil
		}
		return nil, err
	}
	oauthCfg, err := a.oauthConfig(ctx, reg, "")
	if err != nil {
		return nil, err
	}
	stored, refreshed, err := a.ensureFresh(ctx, oauthCfg, tokens, stored)
	if err != nil {
		return nil, err
	}
	a.state = StateAuthenticated
	status.Authenticated = true
	if !stored.Expiry.IsZero() {
		status.Expiry = ptr.To(stored.Expiry)
	}
	status.Refreshed = refreshed
	status.Identity = identityFromIDToken(stored.IDToken)
	if projectID, err := a.store.LoadProjectID(); err == nil {
		status.ProjectID = projectID
	}
	return status, nil
}

// Logout removes the persisted tokens and, with all set, the registration and
// project ID as well.
func (a *Authenticator) Logout(all bool) error {
	tokens, err := a.tokenStore()
	if err != nil {
		return err
	}
	if err := tokens.Delete(); err != nil {
		return err
	}
	if all {
		if err := a.store.Clear(); err != nil {
			return err
		}
	}
	a.state = StateUninitialized
	return nil
}

func (a *Authenticator) tokenStore() (TokenStore, error) {
	if a.tokens != nil {
		return a.tokens, nil
	}
	path, err := a.store.TokenFilePath()
	if err != nil {
		return nil, err
	}
	a.tokens = &FileTokenStore{Path: path}
	return a.tokens, nil
}

func (a *Authenticator) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func (a *Authenticator) oauthConfig(ctx context.Context, reg *credstore.Registration, redirectURL string) (*oauth2.Config, error) {
	endpoint := oauth2.Endpoint{AuthURL: reg.AuthURI, TokenURL: reg.TokenURI}
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, a.httpClient), a.authority)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.ErrNetwork, err, "failed to discover OAuth endpoints at %s", a.authority)
		}
		discovered := provider.Endpoint()
		if endpoint.AuthURL == "" {
			endpoint.AuthURL = discovered.AuthURL
		}
		if endpoint.TokenURL == "" {
			endpoint.TokenURL = discovered.TokenURL
		}
	}
	return &oauth2.Config{
		ClientID:     reg.ClientID,
		ClientSecret: reg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       a.scopes,
	}, nil
}

// ensureFresh performs at most one refresh round-trip and persists its result.
func (a *Authenticator) ensureFresh(ctx context.Context, oauthCfg *oauth2.Config, tokens TokenStore, stored StoredToken) (StoredToken, bool, error) {
	if !stored.ExpiresWithin(a.now(), refreshSkew) {
		return stored, false, nil
	}
	a.state = StateExpired
	if stored.RefreshToken == "" {
		return stored, false, errdefs.New(errdefs.ErrNotAuthenticated, "access token expired and no refresh token is available; run `nestctl auth login` again")
	}
	a.state = StateRefreshing
	a.log.Debugw("Refreshing access token", "expiry", stored.Expiry)
	// Without an access token the source is never considered valid, so it
	// always performs the refresh.
	src := oauthCfg.TokenSource(a.httpContext(ctx), &oauth2.Token{RefreshToken: stored.RefreshToken})
	refreshed, err := src.Token()
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		a.state = StateExpired
		return stored, false, classifyRefreshError(err)
	}
	next := mergeRefreshed(stored, refreshed)
	if err := tokens.Save(next); err != nil {
		return stored, false, err
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	a.log.Debugw("Access token refreshed", "expiry", next.Expiry, "storage", tokens.Name())
	return next, true, nil
}

func classifyRefreshError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return errdefs.Wrap(errdefs.ErrNetwork, err, "token endpoint unavailable")
		}
		return errdefs.Wrap(errdefs.ErrNotAuthenticated, err, "token refresh was rejected; run `nestctl auth login` again")
	}
	return errdefs.Wrap(errdefs.ErrNetwork, err, "token refresh failed")
}

func mergeRefreshed(prev StoredToken, refreshed *oauth2.Token) StoredToken {
	next := newStoredToken(refreshed)
	if next.RefreshToken == "" {
		next.RefreshToken = prev.RefreshToken
	}
	if next.IDToken == "" {
		next.IDToken = prev.IDToken
	}
	return next
}

// persistingTokenSource writes every newly minted access token back to the
// token store.
type persistingTokenSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store TokenStore
	last  StoredToken
	log   *zap.SugaredLogger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return nil, classifyRefreshError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last.AccessToken {
		return token, nil
	}
	next := mergeRefreshed(s.last, token)
	if err := s.store.Save(next); err != nil {
		s.log.Warnw("Failed to persist refreshed token", "error", err)
		return token, nil
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	s.last = next
	return token, nil
}

func identityFromIDToken(idToken string) string {
	if idToken == "" {
		return ""
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	return ""
}
