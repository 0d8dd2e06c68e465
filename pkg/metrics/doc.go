// Package metrics defines Prometheus metrics for nestctl, covering SDM API
// requests, token refreshes, logins and the last observed thermostat readings.
// The registry can be exported in the node_exporter textfile format.
package metrics
