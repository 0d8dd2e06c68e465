package thermostat

import (
	"encoding/json"
	"strings"
)

const (
	TraitPrefix          = "sdm.devices.traits."
	DeviceTypeThermostat = "sdm.devices.types.THERMOSTAT"
)

// Trait namespaces read by nestctl.
const (
	TraitInfo                = "Info"
	TraitTemperature         = "Temperature"
	TraitHumidity            = "Humidity"
	TraitConnectivity        = "Connectivity"
	TraitThermostatMode      = "ThermostatMode"
	TraitThermostatEco       = "ThermostatEco"
	TraitThermostatHvac      = "ThermostatHvac"
	TraitTemperatureSetpoint = "ThermostatTemperatureSetpoint"
)

// Traits maps full trait names to their raw JSON values. The provider may add
// traits at any time, so nothing here assumes a fixed schema.
type Traits map[string]json.RawMessage

// ExtractTrait looks up sdm.devices.traits.<namespace>.
func ExtractTrait(traits Traits, namespace string) (json.RawMessage, bool) {
	raw, ok := traits[TraitPrefix+namespace]
	if !ok || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

// field decodes one member of a trait object. Absent traits, absent members and
// members of the wrong type all report false.
func field[T any](traits Traits, namespace, name string) (T, bool) {
	var zero T
	raw, ok := ExtractTrait(traits, namespace)
	if !ok {
		return zero, false
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return zero, false
	}
	member, ok := members[name]
	if !ok {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(member, &value); err != nil {
		return zero, false
	}
	return value, true
}

func stringField(traits Traits, namespace, name string) (string, bool) {
	value, ok := field[string](traits, namespace, name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// CurrentMode returns ThermostatMode.mode, if reported.
func CurrentMode(traits Traits) (string, bool) {
	return stringField(traits, TraitThermostatMode, "mode")
}

// CustomName returns Info.customName, if set.
func CustomName(traits Traits) (string, bool) {
	return stringField(traits, TraitInfo, "customName")
}

func IsThermostat(deviceType string) bool {
	return deviceType == DeviceTypeThermostat
}

// ShortID returns the last path segment of a device resource name.
func ShortID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
