package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatWide  Format = "wide"

	templatePrefix = "go-template="
)

// Template returns the template text of a go-template=... format.
func (f Format) Template() (string, bool) {
	return strings.CutPrefix(string(f), templatePrefix)
}

// Validate rejects unknown formats and templates that do not parse.
func (f Format) Validate() error {
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatWide:
		return nil
	}
	if text, ok := f.Template(); ok {
		_, err := parseTemplate(text)
		return err
	}
	return fmt.Errorf("unknown output format: %s (use table, wide, json, yaml or go-template=...)", f)
}

func WriteObject(w io.Writer, format Format, obj any) error {
	if text, ok := format.Template(); ok {
		return writeTemplate(w, text, obj)
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		generic, err := toGeneric(obj)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(data))
		return err
	case FormatTable:
		return fmt.Errorf("table format requires a specific formatter")
	case FormatWide:
		return fmt.Errorf("wide format requires a specific formatter")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
