package config

import (
	"fmt"
	"sync"
)

var (
	globalConfig *Config
	configMutex  sync.RWMutex
	initOnce     sync.Once

	listenersMu sync.Mutex
	listeners   []func(old, updated *Config)
)

// Initialize loads path with environment overrides and installs the result
// as the process-wide configuration. Only the first call has any effect.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		SetConfig(cfg)
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before Initialize.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration and notifies listeners
// registered with OnChange. Tests use it to inject a configuration.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	old := globalConfig
	globalConfig = cfg
	configMutex.Unlock()

	listenersMu.Lock()
	fns := append([]func(old, updated *Config){}, listeners...)
	listenersMu.Unlock()

	for _, fn := range fns {
		fn(old, cfg)
	}
}

// OnChange registers fn to run after every SetConfig or successful reload.
// Listeners run synchronously on the goroutine that swapped the config.
func OnChange(fn func(old, updated *Config)) {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	listeners = append(listeners, fn)
}

// ReloadConfig loads path again and swaps it in. On failure the current
// configuration is left untouched.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return nil
}

// MustGetConfig is GetConfig that panics before Initialize.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}

// resetForTesting clears global state between tests.
func resetForTesting() {
	configMutex.Lock()
	globalConfig = nil
	initOnce = sync.Once{}
	configMutex.Unlock()

	listenersMu.Lock()
	listeners = nil
	listenersMu.Unlock()
}
