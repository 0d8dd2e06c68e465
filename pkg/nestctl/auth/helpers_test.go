package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func registrationJSON(serverURL string) string {
	return fmt.Sprintf(`{"installed":{"client_id":"client-id","client_secret":"client-secret","auth_uri":"%s/auth","token_uri":"%s/token","redirect_uris":["http://localhost"]}}`, serverURL, serverURL)
}

func writeRegistration(t *testing.T, serverURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(registrationJSON(serverURL)), 0o600))
	return path
}

func writeTokenJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// completeConsent plays the browser: it follows the consent URL straight back
// to the loopback redirect with the given query parameters.
func completeConsent(params func(state string) url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		query := u.Query()
		callback := query.Get("redirect_uri") + "?" + params(query.Get("state")).Encode()
		resp, err := http.Get(callback)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}
