package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// current is the configuration the running gateway reads.
	current atomic.Pointer[Config]

	initOnce sync.Once
)

// Initialize loads the file at path plus environment overrides and makes it
// the process configuration. "shipdesk run" calls it once at startup; later
// calls are no-ops, and the watcher replaces the value with ReloadConfig.
func Initialize(path string) error {
	var initErr error
	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		current.Store(cfg)
	})
	return initErr
}

// GetConfig returns the process configuration, or nil before Initialize.
// Request handlers read it per request (body size limit), so a reload
// takes effect on the next request.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process configuration. Tests use it to install a
// configuration without a file.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path again and swaps it in when it is valid. On error
// the previous configuration stays in place, so a half-edited file never
// reaches the gateway.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}
