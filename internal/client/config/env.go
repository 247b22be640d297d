package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envOverlay mirrors Config for environment parsing. With the MEDINUTRI
// prefix the variables are MEDINUTRI_SERVER_ADDR, MEDINUTRI_DB_PATH, etc.
type envOverlay struct {
	ServerAddr          string        `envconfig:"SERVER_ADDR"`
	DBPath              string        `envconfig:"DB_PATH"`
	SyncDebounce        time.Duration `envconfig:"SYNC_DEBOUNCE"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
}

// parseEnv overlays cfg with values from the process environment, loading a
// .env file first when one exists.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	var e envOverlay
	if err := envconfig.Process("medinutri", &e); err != nil {
		return
	}

	if e.ServerAddr != "" {
		cfg.ServerEndpointAddr = e.ServerAddr
	}
	if e.DBPath != "" {
		cfg.DatabasePath = e.DBPath
	}
	if e.SyncDebounce != 0 {
		cfg.SyncDebounce = e.SyncDebounce
	}
	if e.RequestTimeout != 0 {
		cfg.RequestTimeout = e.RequestTimeout
	}
	if e.OnlineCheckInterval != 0 {
		cfg.OnlineCheckInterval = e.OnlineCheckInterval
	}
}
