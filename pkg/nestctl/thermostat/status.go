package thermostat

import (
	"fmt"

	"k8s.io/utils/ptr"
)

// Status is the structured report of one snapshot. Nil fields were not reported.
type Status struct {
	Name                   *string  `json:"name,omitempty" yaml:"name,omitempty"`
	AmbientCelsius         *float64 `json:"ambientCelsius,omitempty" yaml:"ambientCelsius,omitempty"`
	AmbientFahrenheit      *float64 `json:"ambientFahrenheit,omitempty" yaml:"ambientFahrenheit,omitempty"`
	HumidityPercent        *float64 `json:"humidityPercent,omitempty" yaml:"humidityPercent,omitempty"`
	Mode                   *string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	HVACStatus             *string  `json:"hvacStatus,omitempty" yaml:"hvacStatus,omitempty"`
	HeatSetpointCelsius    *float64 `json:"heatSetpointCelsius,omitempty" yaml:"heatSetpointCelsius,omitempty"`
	HeatSetpointFahrenheit *float64 `json:"heatSetpointFahrenheit,omitempty" yaml:"heatSetpointFahrenheit,omitempty"`
	CoolSetpointCelsius    *float64 `json:"coolSetpointCelsius,omitempty" yaml:"coolSetpointCelsius,omitempty"`
	CoolSetpointFahrenheit *float64 `json:"coolSetpointFahrenheit,omitempty" yaml:"coolSetpointFahrenheit,omitempty"`
	EcoMode                *string  `json:"ecoMode,omitempty" yaml:"ecoMode,omitempty"`
	Connectivity           *string  `json:"connectivity,omitempty" yaml:"connectivity,omitempty"`
}

// FormatStatus extracts the report fields from a snapshot. Missing or malformed
// traits leave their fields nil.
func FormatStatus(traits Traits) Status {
	var status Status
	if name, ok := CustomName(traits); ok {
		status.Name = ptr.To(name)
	}
	if c, ok := field[float64](traits, TraitTemperature, "ambientTemperatureCelsius"); ok {
		status.AmbientCelsius = ptr.To(roundTo(c, 1))
		status.AmbientFahrenheit = ptr.To(roundTo(CelsiusToFahrenheit(c), 1))
	}
	if humidity, ok := field[float64](traits, TraitHumidity, "ambientHumidityPercent"); ok {
		status.HumidityPercent = ptr.To(roundTo(humidity, 0))
	}
	if mode, ok := CurrentMode(traits); ok {
		status.Mode = ptr.To(mode)
	}
	if hvac, ok := stringField(traits, TraitThermostatHvac, "status"); ok {
		status.HVACStatus = ptr.To(hvac)
	}
	if c, ok := field[float64](traits, TraitTemperatureSetpoint, "heatCelsius"); ok {
		status.HeatSetpointCelsius = ptr.To(roundTo(c, 1))
		status.HeatSetpointFahrenheit = ptr.To(roundTo(CelsiusToFahrenheit(c), 1))
	}
	if c, ok := field[float64](traits, TraitTemperatureSetpoint, "coolCelsius"); ok {
		status.CoolSetpointCelsius = ptr.To(roundTo(c, 1))
		status.CoolSetpointFahrenheit = ptr.To(roundTo(CelsiusToFahrenheit(c), 1))
	}
	if eco, ok := stringField(traits, TraitThermostatEco, "mode"); ok {
		status.EcoMode = ptr.To(eco)
	}
	if connectivity, ok := stringField(traits, TraitConnectivity, "status"); ok {
		status.Connectivity = ptr.To(connectivity)
	}
	return status
}

type Field struct {
	Label string
	Value string
}

// Fields renders the report as labelled lines in display order. Only the name
// is always present.
func (s Status) Fields() []Field {
	fields := []Field{{Label: "Name", Value: ptr.Deref(s.Name, "(unnamed)")}}
	if s.AmbientCelsius != nil {
		fields = append(fields, Field{"Temperature", formatTemperature(*s.AmbientFahrenheit, *s.AmbientCelsius)})
	}
	if s.HumidityPercent != nil {
		fields = append(fields, Field{"Humidity", fmt.Sprintf("%.0f%%", *s.HumidityPercent)})
	}
	if s.Mode != nil {
		fields = append(fields, Field{"Mode", *s.Mode})
	}
	if s.HVACStatus != nil {
		fields = append(fields, Field{"HVAC", *s.HVACStatus})
	}
	if s.HeatSetpointCelsius != nil {
		fields = append(fields, Field{"Heat setpoint", formatTemperature(*s.HeatSetpointFahrenheit, *s.HeatSetpointCelsius)})
	}
	if s.CoolSetpointCelsius != nil {
		fields = append(fields, Field{"Cool setpoint", formatTemperature(*s.CoolSetpointFahrenheit, *s.CoolSetpointCelsius)})
	}
	if s.EcoMode != nil {
		fields = append(fields, Field{"Eco", *s.EcoMode})
	}
	if s.Connectivity != nil {
		fields = append(fields, Field{"Connectivity", *s.Connectivity})
	}
	return fields
}

func formatTemperature(f, c float64) string {
	return fmt.Sprintf("%.1f°F (%.1f°C)", f, c)
}
