package config

import (
	"fmt"
	"maps"
	"time"

	"gopkg.in/yaml.v3"
)

// HostConfig holds per-host overrides for crawl behavior.
// Keys in File.Hosts are network authorities as they appear in URLs
// (e.g., "example.com" or "example.com:8080").
type HostConfig struct {
	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global max depth for this host.
	// Zero means use the global value.
	Depth int `yaml:"depth,omitempty"`

	// Delay overrides the politeness delay for this host.
	// Zero means use the global value.
	Delay time.Duration `yaml:"delay,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching at least one pattern are enqueued.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// MatchScheme requires the link scheme to match the seed's scheme in
	// the same-origin check. nil means use the global setting.
	MatchScheme *bool `yaml:"matchScheme,omitempty"`
}

// UnmarshalYAML decodes a HostConfig, accepting delay values in Go
// duration syntax ("2s", "500ms"). yaml.v3 has no native time.Duration
// support, so the delay is decoded as a string and parsed.
func (hc *HostConfig) UnmarshalYAML(value *yaml.Node) error {
	type alias struct {
		Headers        map[string]string `yaml:"headers"`
		Depth          int               `yaml:"depth"`
		Delay          string            `yaml:"delay"`
		IgnorePatterns []string          `yaml:"ignorePatterns"`
		FollowPatterns []string          `yaml:"followPatterns"`
		MatchScheme    *bool             `yaml:"matchScheme"`
	}

	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}

	hc.Headers = a.Headers
	hc.Depth = a.Depth
	hc.IgnorePatterns = a.IgnorePatterns
	hc.FollowPatterns = a.FollowPatterns
	hc.MatchScheme = a.MatchScheme

	if a.Delay != "" {
		d, err := time.ParseDuration(a.Delay)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", a.Delay, err)
		}
		hc.Delay = d
	}

	return nil
}

// File represents the structure of the .webcrawl configuration file.
type File struct {
	// Hosts maps network authorities to their overrides.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains overrides applied to every host unless a
	// host-specific entry overrides them again.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for the given authority,
// merging host-specific values over the file defaults.
func (cf *File) GetHostConfig(authority string) HostConfig {
	result := cf.Defaults
	// The struct copy above still shares the Headers map with Defaults.
	// Clone it so merging one host's headers never mutates the defaults
	// handed to later hosts.
	result.Headers = maps.Clone(cf.Defaults.Headers)

	hc, ok := cf.Hosts[authority]
	if !ok {
		return result
	}

	if len(hc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(hc.Headers))
		}
		maps.Copy(result.Headers, hc.Headers)
	}
	if hc.Depth != 0 {
		result.Depth = hc.Depth
	}
	if hc.Delay != 0 {
		result.Delay = hc.Delay
	}
	if len(hc.IgnorePatterns) > 0 {
		result.IgnorePatterns = hc.IgnorePatterns
	}
	if len(hc.FollowPatterns) > 0 {
		result.FollowPatterns = hc.FollowPatterns
	}
	if hc.MatchScheme != nil {
		result.MatchScheme = hc.MatchScheme
	}

	return result
}
