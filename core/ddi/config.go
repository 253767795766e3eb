package ddi

import "fmt"

// Config holds configuration for the target DDI store (Infoblox WAPI).
type Config struct {
	// Host is the base URL of the grid master, e.g. "https://infoblox.example.com".
	// An empty host means the target store is not configured.
	Host string `mapstructure:"host" default:""`
	// Username is the WAPI basic-auth user.
	Username string `mapstructure:"username" default:""`
	// Password is the WAPI basic-auth password.
	Password string `mapstructure:"password" default:""`
	// WAPIVersion selects the WAPI base path, e.g. "2.13.1" -> /wapi/v2.13.1/.
	WAPIVersion string `mapstructure:"wapi_version" default:"2.13.1"`
	// NetworkView is the default network view for reads and writes.
	NetworkView string `mapstructure:"network_view" default:"default"`
	// InsecureSkipVerify disables TLS certificate verification.
	// Grid masters commonly run with self-signed certificates.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"true"`
	// RatePerSecond caps outbound requests across all calls of one client.
	RatePerSecond int `mapstructure:"rate_per_second" default:"10"`
	// MaxConns is the total connection pool size.
	MaxConns int `mapstructure:"max_conns" default:"100"`
	// MaxConnsPerHost is the per-destination connection cap.
	MaxConnsPerHost int `mapstructure:"max_conns_per_host" default:"30"`
	// ConnectTimeoutSeconds bounds connection setup per attempt.
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" default:"10"`
	// TimeoutSeconds bounds a whole request attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxAttempts is the total number of attempts per request (first try included).
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// RetryDelayMillis is the base delay between attempts; the actual delay
	// grows linearly with the attempt number.
	RetryDelayMillis int `mapstructure:"retry_delay_millis" default:"1000"`
	// PageSize is the _max_results value for network listings.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// BatchSize is the number of concurrent creates per batch in
	// CreateNetworksBatch.
	BatchSize int `mapstructure:"batch_size" default:"10"`
	// BatchPauseMillis is the pause between batches in CreateNetworksBatch.
	BatchPauseMillis int `mapstructure:"batch_pause_millis" default:"500"`
}

// IsConfigured reports whether a target store host has been set.
func (c Config) IsConfigured() bool {
	return c.Host != ""
}

// Validate checks that the configuration is usable for building a client.
func (c Config) Validate() error {
	if c.Host == "" {
		return ErrNotConfigured
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("ddi: missing credentials for %s", c.Host)
	}
	if c.WAPIVersion == "" {
		return fmt.Errorf("ddi: missing WAPI version")
	}
	return nil
}
