// Package config loads, validates and hot-reloads the vesta configuration.
//
// Values are resolved in this order, later winning:
//
//  1. Default() (defaults.go)
//  2. the YAML file
//  3. VESTA_* environment variables, e.g. VESTA_MODERATION_FAILURE_MODE
//
// The merged configuration is then validated and every problem is reported
// at once in a ValidationError.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//		return err
//	}
//
// # Hot reload
//
// Initialize installs a process-wide configuration. A Watcher reloads the
// file on change and, if it validates, swaps it in and runs the OnChange
// listeners. Only settings that can change safely at runtime are acted on
// by the server: the log level and the moderation failure mode.
//
//	config.OnChange(func(old, updated *config.Config) {
//		logging.SetLevel(updated.Telemetry.Logging.Level)
//	})
//	w, _ := config.NewWatcher("config.yaml", 0, logger)
//	go w.Watch(ctx, nil)
package config
