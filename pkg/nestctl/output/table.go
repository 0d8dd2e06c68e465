package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/telekom/nestctl/pkg/nestctl/client"
	"github.com/telekom/nestctl/pkg/nestctl/thermostat"
)

// WriteDeviceTable lists thermostats by short id and custom name.
func WriteDeviceTable(w io.Writer, devices []client.Device) {
	if len(devices) == 0 {
		_, _ = fmt.Fprintln(w, "No thermostats found.")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME")
	for _, d := range devices {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", thermostat.ShortID(d.Name), deviceName(d))
	}
	_ = tw.Flush()
}

// WriteDeviceTableWide adds the current mode, temperature, room and structure.
// structures maps structure resource names to display names and may be nil.
func WriteDeviceTableWide(w io.Writer, devices []client.Device, structures map[string]string) {
	if len(devices) == 0 {
		_, _ = fmt.Fprintln(w, "No thermostats found.")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tMODE\tTEMPERATURE\tROOM\tSTRUCTURE\tCONNECTIVITY")
	for _, d := range devices {
		status := thermostat.FormatStatus(d.Traits)
		mode := "-"
		if status.Mode != nil {
			mode = *status.Mode
		}
		temperature := "-"
		if status.AmbientCelsius != nil {
			temperature = fmt.Sprintf("%.1f°F", *status.AmbientFahrenheit)
		}
		connectivity := "-"
		if status.Connectivity != nil {
			connectivity = *status.Connectivity
		}
		room, structure := placement(d, structures)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			thermostat.ShortID(d.Name), deviceName(d), mode, temperature, room, structure, connectivity)
	}
	_ = tw.Flush()
}

// WriteStatus prints one "Label: value" line per reported field.
func WriteStatus(w io.Writer, status thermostat.Status) {
	for _, f := range status.Fields() {
		_, _ = fmt.Fprintf(w, "%s: %s\n", f.Label, f.Value)
	}
}

func deviceName(d client.Device) string {
	if name, ok := thermostat.CustomName(d.Traits); ok {
		return name
	}
	return "(unnamed)"
}

// placement resolves the room and structure from the device's parent
// relation, e.g. enterprises/p/structures/s/rooms/r.
func placement(d client.Device, structures map[string]string) (string, string) {
	room, structure := "-", "-"
	for _, rel := range d.ParentRelations {
		if rel.DisplayName != "" {
			room = rel.DisplayName
		}
		structureName, _, _ := strings.Cut(rel.Parent, "/rooms/")
		if name, ok := structures[structureName]; ok {
			structure = name
		}
	}
	return room, structure
}
