// Package config loads physkey settings and keeps them current.
//
// # Architecture
//
// Settings are organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Overrides (Config.Set)  │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. PHYSKEY_* environment   │
//	├─────────────────────────────┤
//	│  2. physkey.toml            │  ← plus "@include" files
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The merged map is checked against an embedded JSON Schema and decoded
// into Settings. Durations are whole milliseconds; out-of-range values are
// clamped when converted to an input.Config rather than rejected.
//
// # Sub-packages
//
//   - loader: TOML or YAML files with includes, PHYSKEY_* environment variables
//   - layer: priority ordered layers and merging
//   - schema: JSON Schema validation of merged settings
//   - watcher: fsnotify based live reload of settings and layout files
//   - notify: per-section change notification
//
// # Basic Usage
//
//	cfg := config.New(config.WithPath("/etc/physkey.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	defer cfg.Close()
//
//	sub, err := cfg.Bind(system)
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
//
// Bind applies the settings to an input.System and re-applies each section
// as it changes. A failed reload leaves the previous settings active and
// is reported as a notify.ChangeError.
package config
