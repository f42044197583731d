package config

import "time"

// Config is the process-wide client configuration.
//
// It is resolved once at startup from defaults, an optional config file,
// environment variables, and runtime overrides (in that order), and is
// immutable afterwards.
type Config struct {
	// Host is the Tower server, with or without a scheme.
	Host string `mapstructure:"host"`

	// Username and Password authenticate every API request.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Insecure disables TLS certificate verification.
	Insecure bool `mapstructure:"insecure"`

	// Format selects output rendering: text, json, or yaml.
	Format string `mapstructure:"format"`

	// Verbose enables debug logging of API round trips.
	Verbose bool `mapstructure:"verbose"`

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// PollInterval is the delay between monitor polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// RequestsPerSecond paces outgoing API requests.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}
