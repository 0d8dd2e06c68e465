package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/nestctl/pkg/nestctl/auth"
	"github.com/telekom/nestctl/pkg/nestctl/output"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the Smart Device Management API",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		clientSecret string
		projectID    string
		noBrowser    bool
		timeout      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the OAuth client and project, then log in through the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if noBrowser {
				rt.noBrowser = true
			}
			authenticator, err := buildAuthenticator(rt, buildStore(rt), auth.WithLoginTimeout(timeout))
			if err != nil {
				return err
			}
			result, err := authenticator.Login(cmd.Context(), clientSecret, projectID)
			if err != nil {
				return err
			}
			w := rt.Writer()
			if result.Token.Expiry.IsZero() {
				_, _ = fmt.Fprintln(w, "Authenticated.")
			} else {
				_, _ = fmt.Fprintf(w, "Authenticated. Token expires at %s\n", result.Token.Expiry.UTC().Format(time.RFC3339))
			}
			if result.Identity != "" {
				_, _ = fmt.Fprintf(w, "Logged in as %s\n", result.Identity)
			}
			_, _ = fmt.Fprintf(w, "Project: %s (tokens stored in %s)\n", result.ProjectID, result.Storage)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Path to the OAuth client secret JSON downloaded from Google Cloud")
	cmd.Flags().StringVar(&projectID, "project-id", "", "Device Access project ID")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the consent URL instead of opening a browser")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the browser consent (default from config, 5m)")
	_ = cmd.MarkFlagRequired("client-secret")
	_ = cmd.MarkFlagRequired("project-id")
	return cmd
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			authenticator, err := buildAuthenticator(rt, buildStore(rt))
			if err != nil {
				return err
			}
			status, err := authenticator.Status(cmd.Context())
			if err != nil {
				return err
			}
			format := output.Format(rt.OutputFormat())
			if format != output.FormatTable && format != output.FormatWide {
				return output.WriteObject(rt.Writer(), format, status)
			}
			writeAuthStatus(rt, status)
			return nil
		},
	}
}

func writeAuthStatus(rt *runtimeState, status *auth.TokenStatus) {
	w := rt.Writer()
	if !status.Authenticated {
		_, _ = fmt.Fprintln(w, "Not authenticated")
		return
	}
	_, _ = fmt.Fprintln(w, "Authenticated")
	if status.Identity != "" {
		_, _ = fmt.Fprintf(w, "Identity: %s\n", status.Identity)
	}
	if status.ProjectID != "" {
		_, _ = fmt.Fprintf(w, "Project: %s\n", status.ProjectID)
	}
	_, _ = fmt.Fprintf(w, "Storage: %s\n", status.Storage)
	if status.Expiry != nil {
		_, _ = fmt.Fprintf(w, "Expires: %s\n", status.Expiry.UTC().Format(time.RFC3339))
	}
	if status.Refreshed {
		_, _ = fmt.Fprintln(w, "Access token refreshed")
	}
}

func newAuthLogoutCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove saved tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			authenticator, err := buildAuthenticator(rt, buildStore(rt))
			if err != nil {
				return err
			}
			if err := authenticator.Logout(all); err != nil {
				return err
			}
			if all {
				_, _ = fmt.Fprintln(rt.Writer(), "Logged out and removed the client registration and project ID")
			} else {
				_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also remove the saved client secret and project ID")
	return cmd
}
