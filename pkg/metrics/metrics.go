package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds only nestctl metrics so textfile exports stay free of Go
// runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nestctl_api_requests_total",
		Help: "Total number of SDM API requests grouped by operation and HTTP status code",
	}, []string{"operation", "code"})
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nestctl_api_request_duration_seconds",
		Help:    "Latency of SDM API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	TokenRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nestctl_token_refreshes_total",
		Help: "Total number of access token refresh attempts grouped by result",
	}, []string{"result"})
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nestctl_logins_total",
		Help: "Total number of interactive login attempts grouped by result",
	}, []string{"result"})
	CommandsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nestctl_device_commands_total",
		Help: "Total number of device commands dispatched grouped by command and result",
	}, []string{"command", "result"})

	// Thermostat readings from the most recent status snapshot.
	AmbientTemperature = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_ambient_temperature_celsius",
		Help: "Ambient temperature reported by the thermostat",
	}, []string{"device"})
	AmbientHumidity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_ambient_humidity_percent",
		Help: "Ambient humidity reported by the thermostat",
	}, []string{"device"})
	HeatSetpoint = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_heat_setpoint_celsius",
		Help: "Heat setpoint of the thermostat",
	}, []string{"device"})
	CoolSetpoint = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_cool_setpoint_celsius",
		Help: "Cool setpoint of the thermostat",
	}, []string{"device"})
	ThermostatMode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_mode",
		Help: "Current thermostat mode (1 for the active mode)",
	}, []string{"device", "mode"})
	HVACStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nestctl_thermostat_hvac_status",
		Help: "Current HVAC activity (1 for the active status)",
	}, []string{"device", "status"})
)

func init() {
	Registry.MustRegister(APIRequests)
	Registry.MustRegister(APIRequestDuration)
	Registry.MustRegister(TokenRefreshes)
	Registry.MustRegister(Logins)
	Registry.MustRegister(CommandsExecuted)
	Registry.MustRegister(AmbientTemperature)
	Registry.MustRegister(AmbientHumidity)
	Registry.MustRegister(HeatSetpoint)
	Registry.MustRegister(CoolSetpoint)
	Registry.MustRegister(ThermostatMode)
	Registry.MustRegister(HVACStatus)
}

// WriteTextfile writes the registry to path in the Prometheus text format. The
// write goes through a temp file and a rename.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
