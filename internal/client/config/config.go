// Package config loads runtime settings for the MediNutri client. Values
// come from defaults, then an optional JSON file, then environment
// variables, then command-line flags; later sources take precedence.
package config

import "time"

// Config holds runtime settings for the client.
type Config struct {
	// ServerEndpointAddr is the base URL of the backend REST API.
	ServerEndpointAddr string
	// DatabasePath is the local SQLite cache location.
	DatabasePath string
	// SyncDebounce is how long after the last mutation the push fires.
	SyncDebounce time.Duration
	// RequestTimeout bounds individual backend calls.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8000"
	c.DatabasePath = "medinutri.db"
	c.SyncDebounce = 1 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
