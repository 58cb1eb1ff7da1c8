// Package config holds webcrawl's runtime configuration.
//
// The Config struct is populated from CLI flags and passed through the
// application by dependency injection rather than global state. Optional
// per-host overrides (headers, delay, URL patterns) are loaded from a
// YAML file named .webcrawl in the current or home directory.
package config
