package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
	"github.com/telekom/nestctl/pkg/nestctl/thermostat"
)

func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change thermostat settings",
	}
	cmd.AddCommand(
		newSetTempCommand(),
		newSetRangeCommand(),
		newSetModeCommand(),
		newSetEcoCommand(),
	)
	return cmd
}

func newSetTempCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "temp <device-id> <fahrenheit>",
		Aliases: []string{"temperature"},
		Short:   "Set the target temperature for the current mode",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseFahrenheit(args[1])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			device, err := apiClient.GetDevice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			command, err := thermostat.BuildSetTemperatureCommand(device.Traits, target)
			if err != nil {
				return err
			}
			if err := apiClient.ExecuteCommand(cmd.Context(), args[0], command.Name, command.Params); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Set temperature to %.0f°F (%.1f°C)\n", target, thermostat.FahrenheitToCelsius(target))
			return nil
		},
	}
}

func newSetRangeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "range <device-id> <heat-fahrenheit> <cool-fahrenheit>",
		Short: "Set both setpoints of a thermostat in HEATCOOL mode",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			heat, err := parseFahrenheit(args[1])
			if err != nil {
				return err
			}
			cool, err := parseFahrenheit(args[2])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			device, err := apiClient.GetDevice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			command, err := thermostat.BuildSetRangeCommand(device.Traits, heat, cool)
			if err != nil {
				return err
			}
			if err := apiClient.ExecuteCommand(cmd.Context(), args[0], command.Name, command.Params); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Set range to %.0f°F - %.0f°F (%.1f°C - %.1f°C)\n",
				heat, cool, thermostat.FahrenheitToCelsius(heat), thermostat.FahrenheitToCelsius(cool))
			return nil
		},
	}
}

func newSetModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "mode <device-id> <heat|cool|heatcool|off>",
		Short:     "Set the thermostat mode",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"heat", "cool", "heatcool", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := thermostat.BuildSetModeCommand(args[1])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			if err := apiClient.ExecuteCommand(cmd.Context(), args[0], command.Name, command.Params); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Mode set to %s\n", command.Params["mode"])
			return nil
		},
	}
}

func newSetEcoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eco <device-id> <manual_eco|off>",
		Short: "Turn eco mode on or off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := thermostat.BuildSetEcoCommand(args[1])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			if err := apiClient.ExecuteCommand(cmd.Context(), args[0], command.Name, command.Params); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Eco mode set to %s\n", command.Params["mode"])
			return nil
		},
	}
}

func parseFahrenheit(value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "F"), 64)
	if err != nil {
		return 0, errdefs.New(errdefs.ErrInvalidArgument, "invalid temperature %q: expected degrees Fahrenheit", value)
	}
	return f, nil
}
