package beacon

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minddeck/beacon-go/adapters"
)

// FileConfig is the YAML form of the client configuration. Durations use
// Go duration syntax ("30s", "15m").
type FileConfig struct {
	Endpoint          string `yaml:"endpoint"`
	HeartbeatInterval string `yaml:"heartbeatInterval"`
	SessionTimeout    string `yaml:"sessionTimeout"`
	MaxPendingEvents  int    `yaml:"maxPendingEvents"`
	MaxSendAttempts   int    `yaml:"maxSendAttempts"`
	UserAgent         string `yaml:"userAgent"`
	Timezone          string `yaml:"timezone"`
	StorageFile       string `yaml:"storageFile"`
	LogLevel          string `yaml:"logLevel"`
}

// LoadConfig reads a YAML config file and applies environment overrides
// (BEACON_ENDPOINT, BEACON_STORAGE_FILE, BEACON_LOG_LEVEL). An empty path
// yields a config built from the environment alone.
func LoadConfig(path string) (ClientConfig, error) {
	var fc FileConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return ClientConfig{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("BEACON_ENDPOINT"); v != "" {
		fc.Endpoint = v
	}
	if v := os.Getenv("BEACON_STORAGE_FILE"); v != "" {
		fc.StorageFile = v
	}
	if v := os.Getenv("BEACON_LOG_LEVEL"); v != "" {
		fc.LogLevel = v
	}

	config := ClientConfig{
		Endpoint:         fc.Endpoint,
		MaxPendingEvents: fc.MaxPendingEvents,
		MaxSendAttempts:  fc.MaxSendAttempts,
		UserAgent:        fc.UserAgent,
		Timezone:         fc.Timezone,
	}

	if fc.HeartbeatInterval != "" {
		d, err := time.ParseDuration(fc.HeartbeatInterval)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid heartbeatInterval: %w", err)
		}
		config.HeartbeatInterval = d
	}
	if fc.SessionTimeout != "" {
		d, err := time.ParseDuration(fc.SessionTimeout)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid sessionTimeout: %w", err)
		}
		config.SessionTimeout = d
	}
	if fc.StorageFile != "" {
		config.StorageAdapter = adapters.NewFileStorageAdapter(fc.StorageFile)
	}
	if fc.LogLevel != "" {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(LogLevel(fc.LogLevel))
	}

	return config, nil
}
