/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/telekom/nestctl/pkg/nestctl/client"
)

func TestFormatConstants(t *testing.T) {
	assert.Equal(t, Format("table"), FormatTable)
	assert.Equal(t, Format("json"), FormatJSON)
	assert.Equal(t, Format("yaml"), FormatYAML)
	assert.Equal(t, Format("wide"), FormatWide)
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		format  Format
		wantErr bool
	}{
		{FormatTable, false},
		{FormatWide, false},
		{FormatJSON, false},
		{FormatYAML, false},
		{Format("go-template={{ .name }}"), false},
		{Format("go-template={{ .name "), true},
		{Format("xml"), true},
		{Format(""), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteObject_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, FormatJSON, map[string]int{"count": 42}))

	var result map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, 42, result["count"])
	assert.Contains(t, buf.String(), "\n  \"count\"")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWriteObject_YAMLRendersRawTraits(t *testing.T) {
	device := client.Device{
		Name:   "enterprises/p1/devices/abc",
		Type:   "sdm.devices.types.THERMOSTAT",
		Traits: map[string]json.RawMessage{"sdm.devices.traits.ThermostatMode": json.RawMessage(`{"mode":"COOL"}`)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, FormatYAML, device))

	var result map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "enterprises/p1/devices/abc", result["name"])
	traits := result["traits"].(map[string]any)
	assert.Equal(t, map[string]any{"mode": "COOL"}, traits["sdm.devices.traits.ThermostatMode"])
}

func TestWriteObject_GoTemplate(t *testing.T) {
	devices := []client.Device{
		{Name: "enterprises/p1/devices/abc"},
		{Name: "enterprises/p1/devices/def"},
	}

	var buf bytes.Buffer
	err := WriteObject(&buf, Format(`go-template={{ range . }}{{ .name | base | upper }}{{ "\n" }}{{ end }}`), devices)
	require.NoError(t, err)
	assert.Equal(t, "ABC\nDEF\n", buf.String())
}

func TestWriteObject_GoTemplateErrors(t *testing.T) {
	var buf bytes.Buffer
	err := WriteObject(&buf, Format("go-template={{ .name"), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid go-template")

	err = WriteObject(&buf, Format(`go-template={{ fail "boom" }}`), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWriteObject_TableFormat(t *testing.T) {
	err := WriteObject(&bytes.Buffer{}, FormatTable, struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table format requires a specific formatter")
}

func TestWriteObject_UnknownFormat(t *testing.T) {
	err := WriteObject(&bytes.Buffer{}, Format("xml"), struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestWriteObject_JSONMarshalError(t *testing.T) {
	err := WriteObject(&bytes.Buffer{}, FormatJSON, make(chan int))
	require.Error(t, err)
}
