package metrics

import "github.com/kilianp07/evdash/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress starts the /metrics endpoint when set.
	PrometheusAddress string `json:"prometheus_address"`
}
