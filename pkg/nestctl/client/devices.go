package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/telekom/nestctl/pkg/metrics"
)

type ParentRelation struct {
	Parent      string `json:"parent"`
	DisplayName string `json:"displayName,omitempty"`
}

type Device struct {
	Name            string                     `json:"name"`
	Type            string                     `json:"type"`
	Assignee        string                     `json:"assignee,omitempty"`
	Traits          map[string]json.RawMessage `json:"traits,omitempty"`
	ParentRelations []ParentRelation           `json:"parentRelations,omitempty"`
}

type listDevicesResponse struct {
	Devices []Device `json:"devices"`
}

type commandRequest struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// ListDevices returns every device visible to the project. An empty project
// yields an empty slice.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var resp listDevicesResponse
	endpoint := apiVersion + "/enterprises/" + c.projectID + "/devices"
	if err := c.do(ctx, "list devices", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Devices == nil {
		return []Device{}, nil
	}
	return resp.Devices, nil
}

// GetDevice fetches a fresh snapshot of a single device.
func (c *Client) GetDevice(ctx context.Context, ref string) (*Device, error) {
	var device Device
	endpoint := apiVersion + "/" + ResolveDeviceName(ref, c.projectID)
	if err := c.do(ctx, "get device", http.MethodGet, endpoint, nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// ExecuteCommand dispatches one command to a device. It is never retried.
func (c *Client) ExecuteCommand(ctx context.Context, ref, command string, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}
	endpoint := apiVersion + "/" + ResolveDeviceName(ref, c.projectID) + ":executeCommand"
	err := c.do(ctx, "execute command", http.MethodPost, endpoint, commandRequest{Command: command, Params: params}, nil)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.CommandsExecuted.WithLabelValues(command, result).Inc()
	return err
}
