package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

func parseTemplate(text string) (*template.Template, error) {
	tmpl, err := template.New("output").Funcs(sprig.FuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid go-template: %w", err)
	}
	return tmpl, nil
}

// writeTemplate renders obj through its JSON form so templates address fields
// by their JSON names, as in .name or .traits.
func writeTemplate(w io.Writer, text string, obj any) error {
	tmpl, err := parseTemplate(text)
	if err != nil {
		return err
	}
	generic, err := toGeneric(obj)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, generic); err != nil {
		return fmt.Errorf("failed to render go-template: %w", err)
	}
	return nil
}

// toGeneric converts obj to plain maps and slices via its JSON encoding, so raw
// JSON trait values render as documents instead of byte arrays.
func toGeneric(obj any) (any, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
