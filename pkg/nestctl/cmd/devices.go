package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telekom/nestctl/pkg/metrics"
	"github.com/telekom/nestctl/pkg/nestctl/client"
	"github.com/telekom/nestctl/pkg/nestctl/output"
	"github.com/telekom/nestctl/pkg/nestctl/thermostat"
	"github.com/telekom/nestctl/pkg/system"
)

func NewDevicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"device"},
		Short:   "List and inspect thermostats",
	}
	cmd.AddCommand(
		newDevicesListCommand(),
		newDevicesStatusCommand(),
	)
	return cmd
}

func newDevicesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List thermostats in the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			devices, err := apiClient.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			thermostats := make([]client.Device, 0, len(devices))
			for _, d := range devices {
				if thermostat.IsThermostat(d.Type) {
					thermostats = append(thermostats, d)
				}
			}
			rt.log.Debugw("Listed devices", "total", len(devices), "thermostats", len(thermostats))

			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatTable:
				output.WriteDeviceTable(rt.Writer(), thermostats)
			case output.FormatWide:
				var names map[string]string
				structures, err := apiClient.ListStructures(cmd.Context())
				if err != nil {
					rt.log.Warnw("Failed to list structures", "error", err)
				} else {
					names = client.StructureNames(structures)
				}
				output.WriteDeviceTableWide(rt.Writer(), thermostats, names)
			default:
				return output.WriteObject(rt.Writer(), format, thermostats)
			}
			return nil
		},
	}
}

func newDevicesStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <device-id>",
		Short: "Show the current state of a thermostat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			status := thermostat.FormatStatus(device.Traits)
			recordStatus(thermostat.ShortID(device.Name), status)
			rt.log.Debugw("Fetched device status", system.DeviceFields(device.Name, apiClient.ProjectID())...)

			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatTable, output.FormatWide:
				output.WriteStatus(rt.Writer(), status)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, status)
			}
		},
	}
}

// recordStatus exports the snapshot as thermostat gauges.
func recordStatus(device string, status thermostat.Status) {
	if status.AmbientCelsius != nil {
		metrics.AmbientTemperature.WithLabelValues(device).Set(*status.AmbientCelsius)
	}
	if status.HumidityPercent != nil {
		metrics.AmbientHumidity.WithLabelValues(device).Set(*status.HumidityPercent)
	}
	if status.HeatSetpointCelsius != nil {
		metrics.HeatSetpoint.WithLabelValues(device).Set(*status.HeatSetpointCelsius)
	}
	if status.CoolSetpointCelsius != nil {
		metrics.CoolSetpoint.WithLabelValues(device).Set(*status.CoolSetpointCelsius)
	}
	if status.Mode != nil {
		metrics.ThermostatMode.WithLabelValues(device, *status.Mode).Set(1)
	}
	if status.HVACStatus != nil {
		metrics.HVACStatus.WithLabelValues(device, *status.HVACStatus).Set(1)
	}
}
