package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
	"github.com/telekom/nestctl/pkg/ratelimit"
	"github.com/telekom/nestctl/pkg/system"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}))
	c, err := New(
		WithHTTPClient(httpClient),
		WithBaseURL(server.URL+"/"),
		WithProjectID("p1"),
		WithUserAgent("test-agent"),
		WithRateLimit(ratelimit.Config{}),
		WithLogger(system.NewTestLogger(t)),
	)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func googleError(code int, status, message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "status": status, "message": message}}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "missing project",
			opts:    []Option{},
			wantErr: true,
		},
		{
			name:    "project with slash",
			opts:    []Option{WithProjectID("a/b")},
			wantErr: true,
		},
		{
			name:    "invalid endpoint",
			opts:    []Option{WithProjectID("p1"), WithBaseURL("ftp://example.com")},
			wantErr: true,
		},
		{
			name: "valid config",
			opts: []Option{
				WithProjectID("p1"),
				WithBaseURL("https://example.com/"),
				WithUserAgent("test-agent"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, client)
			} else {
				require.NoError(t, err)
				require.NotNil(t, client)
				assert.Equal(t, "p1", client.ProjectID())
			}
		})
	}
}

func TestResolveDeviceName(t *testing.T) {
	assert.Equal(t, "enterprises/p1/devices/d1", ResolveDeviceName("enterprises/p1/devices/d1", "p2"))
	assert.Equal(t, "enterprises/p2/devices/d1", ResolveDeviceName("d1", "p2"))
}

func TestListDevices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/enterprises/p1/devices", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		assert.NoError(t, err)

		writeJSON(w, http.StatusOK, map[string]any{
			"devices": []map[string]any{
				{
					"name": "enterprises/p1/devices/abc",
					"type": "sdm.devices.types.THERMOSTAT",
					"traits": map[string]any{
						"sdm.devices.traits.Info": map[string]any{"customName": "Hallway"},
					},
					"parentRelations": []map[string]any{{"parent": "enterprises/p1/structures/s1/rooms/r1", "displayName": "Hallway"}},
				},
			},
		})
	})

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "enterprises/p1/devices/abc", devices[0].Name)
	assert.Equal(t, "sdm.devices.types.THERMOSTAT", devices[0].Type)
	assert.Contains(t, devices[0].Traits, "sdm.devices.traits.Info")
	assert.Equal(t, "Hallway", devices[0].ParentRelations[0].DisplayName)
}

func TestListDevices_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestGetDevice(t *testing.T) {
	for _, ref := range []string{"abc", "enterprises/p1/devices/abc"} {
		t.Run(ref, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/enterprises/p1/devices/abc", r.URL.Path)
				writeJSON(w, http.StatusOK, map[string]any{
					"name":   "enterprises/p1/devices/abc",
					"type":   "sdm.devices.types.THERMOSTAT",
					"traits": map[string]any{"sdm.devices.traits.ThermostatMode": map[string]any{"mode": "COOL"}},
				})
			})

			device, err := c.GetDevice(context.Background(), ref)
			require.NoError(t, err)
			assert.JSONEq(t, `{"mode":"COOL"}`, string(device.Traits["sdm.devices.traits.ThermostatMode"]))
		})
	}
}

func TestExecuteCommand(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/enterprises/p1/devices/abc:executeCommand", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"command":"sdm.devices.commands.ThermostatMode.SetMode","params":{"mode":"COOL"}}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	err := c.ExecuteCommand(context.Background(), "abc", "sdm.devices.commands.ThermostatMode.SetMode", map[string]any{"mode": "COOL"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteCommand_NotRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusServiceUnavailable, googleError(503, "UNAVAILABLE", "The service is currently unavailable."))
	})

	err := c.ExecuteCommand(context.Background(), "abc", "cmd", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrNetwork))
	assert.Equal(t, 1, calls)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		kind    error
		message string
	}{
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    googleError(404, "NOT_FOUND", "Device enterprises/p1/devices/zzz not found."),
			kind:    errdefs.ErrDeviceNotFound,
			message: "not found",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    googleError(401, "UNAUTHENTICATED", "Request had invalid authentication credentials."),
			kind:    errdefs.ErrAuth,
			message: "invalid authentication credentials",
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			body:    googleError(403, "PERMISSION_DENIED", "The caller does not have permission"),
			kind:    errdefs.ErrAuth,
			message: "does not have permission",
		},
		{
			name:    "bad request",
			status:  http.StatusBadRequest,
			body:    googleError(400, "FAILED_PRECONDITION", "Command not supported."),
			kind:    errdefs.ErrNetwork,
			message: "Command not supported.",
		},
		{
			name:    "plain text body",
			status:  http.StatusInternalServerError,
			body:    "boom",
			kind:    errdefs.ErrNetwork,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if s, ok := tt.body.(string); ok {
					w.WriteHeader(tt.status)
					_, _ = io.WriteString(w, s)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.GetDevice(context.Background(), "zzz")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := New(WithBaseURL(url), WithProjectID("p1"))
	require.NoError(t, err)

	_, err = c.ListDevices(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrNetwork))
}

type failingSource struct{ err error }

func (s failingSource) Token() (*oauth2.Token, error) { return nil, s.err }

func TestTokenSourceFailureStaysNotAuthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the provider")
	}))
	defer server.Close()

	httpClient := oauth2.NewClient(context.Background(), failingSource{err: errdefs.New(errdefs.ErrNotAuthenticated, "token refresh was rejected")})
	c, err := New(WithHTTPClient(httpClient), WithBaseURL(server.URL), WithProjectID("p1"))
	require.NoError(t, err)

	_, err = c.ListDevices(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrNotAuthenticated), "got %v", err)
}

func TestListStructures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/enterprises/p1/structures", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"structures": []map[string]any{
				{"name": "enterprises/p1/structures/s1", "traits": map[string]any{"sdm.structures.traits.Info": map[string]any{"customName": "Home"}}},
				{"name": "enterprises/p1/structures/s2"},
			},
		})
	})

	structures, err := c.ListStructures(context.Background())
	require.NoError(t, err)
	require.Len(t, structures, 2)
	assert.Equal(t, map[string]string{"enterprises/p1/structures/s1": "Home"}, StructureNames(structures))
}
