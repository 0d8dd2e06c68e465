package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/telekom/nestctl/pkg/nestctl/auth"
	"github.com/telekom/nestctl/pkg/nestctl/credstore"
)

const testProject = "project-1"

// fakeSDM serves the device endpoints for one project and records every
// executeCommand request.
type fakeSDM struct {
	mu       sync.Mutex
	devices  []map[string]any
	commands []map[string]any
	requests int
	server   *httptest.Server
}

func newFakeSDM(t *testing.T, devices ...map[string]any) *fakeSDM {
	t.Helper()
	f := &fakeSDM{devices: devices}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSDM) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if r.Header.Get("Authorization") != "Bearer valid-access" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": 401, "message": "invalid credentials"}})
		return
	}
	prefix := "/v1/enterprises/" + testProject
	switch {
	case r.Method == http.MethodGet && r.URL.Path == prefix+"/devices":
		writeJSON(w, http.StatusOK, map[string]any{"devices": f.devices})
	case r.Method == http.MethodGet && r.URL.Path == prefix+"/structures":
		writeJSON(w, http.StatusOK, map[string]any{"structures": []map[string]any{{
			"name":   "enterprises/" + testProject + "/structures/s1",
			"traits": map[string]any{"sdm.structures.traits.Info": map[string]any{"customName": "Home"}},
		}}})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":executeCommand"):
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/"), ":executeCommand")
		if f.find(name) == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "Device not found."}})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.commands = append(f.commands, body)
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.Method == http.MethodGet:
		device := f.find(strings.TrimPrefix(r.URL.Path, "/v1/"))
		if device == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "Device not found."}})
			return
		}
		writeJSON(w, http.StatusOK, device)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeSDM) find(name string) map[string]any {
	for _, d := range f.devices {
		if d["name"] == name {
			return d
		}
	}
	return nil
}

func (f *fakeSDM) Commands() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.commands...)
}

func (f *fakeSDM) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func thermostatDevice(id string, traits map[string]any) map[string]any {
	return map[string]any{
		"name":   "enterprises/" + testProject + "/devices/" + id,
		"type":   "sdm.devices.types.THERMOSTAT",
		"traits": traits,
		"parentRelations": []map[string]any{{
			"parent":      "enterprises/" + testProject + "/structures/s1/rooms/r1",
			"displayName": "Hallway",
		}},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func registrationJSON(tokenURL string) string {
	return fmt.Sprintf(`{"installed":{"client_id":"client-id","client_secret":"client-secret","auth_uri":"%s/auth","token_uri":"%s/token","redirect_uris":["http://localhost"]}}`, tokenURL, tokenURL)
}

// loggedIn prepares a credentials directory with a registration, the test
// project and a valid access token.
func loggedIn(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nestctl")
	source := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(source, []byte(registrationJSON("http://127.0.0.1:1")), 0o600))
	store := credstore.NewFileStore(dir)
	require.NoError(t, store.Init(source, testProject))
	path, err := store.TokenFilePath()
	require.NoError(t, err)
	require.NoError(t, (&auth.FileTokenStore{Path: path}).Save(auth.StoredToken{
		AccessToken:  "valid-access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}))
	return dir
}

type testCLI struct {
	out    *bytes.Buffer
	errOut *bytes.Buffer
	cfg    Config
}

func newTestCLI(t *testing.T, credentialsDir string) *testCLI {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &testCLI{
		out:    out,
		errOut: errOut,
		cfg: Config{
			ConfigPath:     filepath.Join(t.TempDir(), "config.yaml"),
			CredentialsDir: credentialsDir,
			OutputWriter:   out,
			ErrorWriter:    errOut,
			Browser:        func(string) error { return nil },
		},
	}
}

func (c *testCLI) run(args ...string) error {
	root := NewRootCommand(c.cfg)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}
