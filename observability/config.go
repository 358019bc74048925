package observability

import "time"

// Config is the observability section of the service configuration.
type Config struct {
	// Enabled turns on OTLP export. When false the otel no-op providers stay
	// installed.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	// SampleRate is the trace sampling ratio in (0, 1]. Zero means unset and
	// samples everything.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Resource identifies the service in exported telemetry.
type Resource struct {
	ServiceName string
	Version     string
	Environment string
}

// TracerConfig derives the tracer settings for r.
func (c Config) TracerConfig(r Resource) TracerConfig {
	return TracerConfig{
		Resource:   r,
		Endpoint:   c.Endpoint,
		Insecure:   c.Insecure,
		SampleRate: c.SampleRate,
	}
}

// MeterConfig derives the meter settings for r.
func (c Config) MeterConfig(r Resource) MeterConfig {
	return MeterConfig{
		Resource: r,
		Endpoint: c.Endpoint,
		Insecure: c.Insecure,
		Interval: c.Interval,
	}
}
