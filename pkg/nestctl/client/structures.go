package client

import (
	"context"
	"encoding/json"
	"net/http"
)

const structureInfoTrait = "sdm.structures.traits.Info"

type Structure struct {
	Name   string                     `json:"name"`
	Traits map[string]json.RawMessage `json:"traits,omitempty"`
}

// DisplayName returns the structure's custom name, if it has one.
func (s Structure) DisplayName() string {
	raw, ok := s.Traits[structureInfoTrait]
	if !ok {
		return ""
	}
	var info struct {
		CustomName string `json:"customName"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return ""
	}
	return info.CustomName
}

type listStructuresResponse struct {
	Structures []Structure `json:"structures"`
}

func (c *Client) ListStructures(ctx context.Context) ([]Structure, error) {
	var resp listStructuresResponse
	endpoint := apiVersion + "/enterprises/" + c.projectID + "/structures"
	if err := c.do(ctx, "list structures", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Structures == nil {
		return []Structure{}, nil
	}
	return resp.Structures, nil
}

// StructureNames maps structure resource names to their display names.
func StructureNames(structures []Structure) map[string]string {
	names := make(map[string]string, len(structures))
	for _, s := range structures {
		if name := s.DisplayName(); name != "" {
			names[s.Name] = name
		}
	}
	return names
}
