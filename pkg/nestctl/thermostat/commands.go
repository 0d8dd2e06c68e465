package thermostat

import (
	"math"
	"strings"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
)

const (
	CommandSetHeat  = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetHeat"
	CommandSetCool  = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetCool"
	CommandSetRange = "sdm.devices.commands.ThermostatTemperatureSetpoint.SetRange"
	CommandSetMode  = "sdm.devices.commands.ThermostatMode.SetMode"
	CommandSetEco   = "sdm.devices.commands.ThermostatEco.SetMode"
)

const (
	ModeHeat     = "HEAT"
	ModeCool     = "COOL"
	ModeHeatCool = "HEATCOOL"
	ModeOff      = "OFF"

	EcoManual = "MANUAL_ECO"
	EcoOff    = "OFF"
)

// Command is a device command ready for dispatch.
type Command struct {
	Name   string         `json:"command" yaml:"command"`
	Params map[string]any `json:"params" yaml:"params"`
}

// BuildSetTemperatureCommand picks the setpoint command for the device's
// current mode. A missing mode is treated as HEAT, and so is any mode other
// than COOL and HEATCOOL. HEATCOOL has two setpoints and is refused.
func BuildSetTemperatureCommand(traits Traits, targetFahrenheit float64) (Command, error) {
	if err := validateTemperature(targetFahrenheit); err != nil {
		return Command{}, err
	}
	mode, ok := CurrentMode(traits)
	if !ok {
		mode = ModeHeat
	}
	celsius := FahrenheitToCelsius(targetFahrenheit)
	switch mode {
	case ModeCool:
		return Command{Name: CommandSetCool, Params: map[string]any{"coolCelsius": celsius}}, nil
	case ModeHeatCool:
		return Command{}, errdefs.New(errdefs.ErrAmbiguousSetpoint,
			"In HEATCOOL mode, use separate heat/cool setpoints. Switch to HEAT or COOL mode first, or use `nestctl set range`.")
	default:
		return Command{Name: CommandSetHeat, Params: map[string]any{"heatCelsius": celsius}}, nil
	}
}

// BuildSetRangeCommand sets both setpoints of a device in HEATCOOL mode.
func BuildSetRangeCommand(traits Traits, heatFahrenheit, coolFahrenheit float64) (Command, error) {
	if err := validateTemperature(heatFahrenheit); err != nil {
		return Command{}, err
	}
	if err := validateTemperature(coolFahrenheit); err != nil {
		return Command{}, err
	}
	mode, ok := CurrentMode(traits)
	if !ok {
		mode = ModeHeat
	}
	if mode != ModeHeatCool {
		return Command{}, errdefs.New(errdefs.ErrInvalidArgument,
			"a heat/cool range needs HEATCOOL mode, device is in %s mode; use `nestctl set temp` instead", mode)
	}
	if heatFahrenheit >= coolFahrenheit {
		return Command{}, errdefs.New(errdefs.ErrInvalidArgument,
			"heat setpoint %.1f°F must be below cool setpoint %.1f°F", heatFahrenheit, coolFahrenheit)
	}
	return Command{Name: CommandSetRange, Params: map[string]any{
		"heatCelsius": FahrenheitToCelsius(heatFahrenheit),
		"coolCelsius": FahrenheitToCelsius(coolFahrenheit),
	}}, nil
}

// BuildSetModeCommand accepts heat, cool, heatcool or off in any case.
func BuildSetModeCommand(mode string) (Command, error) {
	var canonical string
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "heat":
		canonical = ModeHeat
	case "cool":
		canonical = ModeCool
	case "heatcool":
		canonical = ModeHeatCool
	case "off":
		canonical = ModeOff
	default:
		return Command{}, errdefs.New(errdefs.ErrInvalidMode, "Unknown mode: %s. Use heat, cool, heatcool, or off.", mode)
	}
	return Command{Name: CommandSetMode, Params: map[string]any{"mode": canonical}}, nil
}

// BuildSetEcoCommand accepts manual_eco or off in any case.
func BuildSetEcoCommand(mode string) (Command, error) {
	var canonical string
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "manual_eco":
		canonical = EcoManual
	case "off":
		canonical = EcoOff
	default:
		return Command{}, errdefs.New(errdefs.ErrInvalidMode, "Unknown eco mode: %s. Use manual_eco or off.", mode)
	}
	return Command{Name: CommandSetEco, Params: map[string]any{"mode": canonical}}, nil
}

func validateTemperature(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errdefs.New(errdefs.ErrInvalidArgument, "temperature %v is not a number", f)
	}
	return nil
}
