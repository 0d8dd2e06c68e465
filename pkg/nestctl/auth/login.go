package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"

	"github.com/telekom/nestctl/pkg/metrics"
	"github.com/telekom/nestctl/pkg/nestctl/credstore"
	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

type LoginResult struct {
	Token *oauth2.Token
	// Identity is the email (or subject) from the id_token; empty when the
	// openid scope was not granted.
	Identity  string
	ProjectID string
	Storage   string
}

// Login saves the client registration and project ID, then runs the
// authorization-code flow with a loopback redirect and persists the tokens.
// It blocks until one callback arrives or the login timeout elapses.
func (a *Authenticator) Login(ctx context.Context, clientSecretSource, projectID string) (*LoginResult, error) {
	if err := a.store.Init(clientSecretSource, projectID); err != nil {
		return nil, err
	}
	reg, err := a.store.LoadRegistration()
	if err != nil {
		return nil, err
	}
	tokens, err := a.tokenStore()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.loginTimeout)
	defer cancel()

	result, err := a.runAuthCodeFlow(ctx, reg)
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		a.state = StateUninitialized
		return nil, err
	}
	stored := newStoredToken(result.Token)
	if err := tokens.Save(stored); err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.Logins.WithLabelValues("success").Inc()
	a.state = StateAuthenticated
	result.ProjectID = strings.TrimSpace(projectID)
	result.Storage = tokens.Name()
	a.log.Infow("Login complete", "storage", tokens.Name(), "expiry", stored.Expiry, "identity", result.Identity)
	return result, nil
}

type callbackResult struct {
	result *LoginResult
	err    error
}

func (a *Authenticator) runAuthCodeFlow(ctx context.Context, reg *credstore.Registration) (*LoginResult, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrAuthFlow, err, "failed to start callback listener")
	}
	defer func() {
		_ = listener.Close()
	}()

	redirectURL := fmt.Sprintf("http://%s/", listener.Addr().String())
	oauthCfg, err := a.oauthConfig(ctx, reg, redirectURL)
	if err != nil {
		return nil, err
	}

	state, err := randomToken(24)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrAuthFlow, err, "failed to prepare login")
	}
	verifier := oauth2.GenerateVerifier()
	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	done := make(chan callbackResult, 1)
	var handled atomic.Bool
	exchangeCtx := a.httpContext(ctx)

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			if !handled.CompareAndSwap(false, true) {
				http.Error(w, "login already handled", http.StatusGone)
				return
			}
			query := r.URL.Query()
			if reason := query.Get("error"); reason != "" {
				http.Error(w, "authorization denied", http.StatusForbidden)
				done <- callbackResult{err: errdefs.New(errdefs.ErrAuthFlow, "authorization denied: %s", reason)}
				return
			}
			if query.Get("state") != state {
				http.Error(w, "invalid state", http.StatusBadRequest)
				done <- callbackResult{err: errdefs.New(errdefs.ErrAuthFlow, "invalid state in callback")}
				return
			}
			code := query.Get("code")
			if code == "" {
				http.Error(w, "missing code", http.StatusBadRequest)
				done <- callbackResult{err: errdefs.New(errdefs.ErrAuthFlow, "missing code in callback")}
				return
			}
			token, err := oauthCfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
			if err != nil {
				http.Error(w, "token exchange failed", http.StatusInternalServerError)
				done <- callbackResult{err: errdefs.Wrap(errdefs.ErrAuthFlow, err, "token exchange failed")}
				return
			}
			idToken, _ := token.Extra("id_token").(string)
			_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
			done <- callbackResult{result: &LoginResult{Token: token, Identity: identityFromIDToken(idToken)}}
		}),
	}

	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		_ = server.Close()
	}()

	a.state = StateAwaitingUserConsent
	_, _ = fmt.Fprintf(a.out, "Open the following URL in your browser:\n%s\n", authURL)
	if a.openBrowser != nil {
		if err := a.openBrowser(authURL); err != nil {
			a.log.Debugw("Could not open browser", "error", err)
		}
	}

	select {
	case <-ctx.Done():
		return nil, errdefs.Wrap(errdefs.ErrAuthFlow, ctx.Err(), "timed out waiting for the authorization callback")
	case res := <-done:
		return res.result, res.err
	}
}

func randomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if cmd == nil {
		return errors.New("no browser command available")
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
