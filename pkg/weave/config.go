// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk schema for a weave configuration file (spec §6
// "Configuration schema").
type Config struct {
	QueryPaths  []string                  `yaml:"query_paths"`
	Grammars    map[string]GrammarConfig  `yaml:"grammars"`
	Formatters  map[string][]FormatterRef `yaml:"formatters"`
	Plugins     map[string]PluginConfig   `yaml:"plugins"`
	Languages   map[string]LanguageConfig `yaml:"languages"`
	Profiles    map[string]Config         `yaml:"profiles"`
	PrintWidth  int                       `yaml:"print_width"`
}

// GrammarConfig locates a language's grammar outside the built-in set
// (spec §6 "grammars[lang]").
type GrammarConfig struct {
	Path        string `yaml:"path"`
	DownloadDir string `yaml:"download_dir"`
	BuildDir    string `yaml:"build_dir"`
}

// FormatterRef is one entry in a language's formatter chain (spec §6
// "formatters[lang]", §4.2 "first-installed wins").
type FormatterRef struct {
	Name    string        `yaml:"name"`
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Plugin  string        `yaml:"plugin"`
	Timeout time.Duration `yaml:"timeout"`
}

// PluginConfig locates a WebAssembly formatter plugin module on disk.
type PluginConfig struct {
	Path      string   `yaml:"path"`
	Languages []string `yaml:"languages"`
}

// LanguageConfig carries per-language overrides that aren't themselves
// a formatter or grammar reference, e.g. a language-specific print
// width.
type LanguageConfig struct {
	PrintWidth int `yaml:"print_width"`
}

// LoadConfig reads and parses a weave configuration file (spec §6).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("reading %s", path), Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("parsing %s", path), Err: err}
	}
	return &cfg, nil
}

// WithProfile returns a copy of cfg with profile merged over it: scalars
// in the profile replace the base, lists concatenate (profile entries
// appended after base entries), and maps merge key by key: an entry the
// profile names for a key (a language's formatters chain, a grammar,
// plugin or language entry) replaces the base entry for that key whole;
// the fields of the two entries are not merged (spec §6 "profiles",
// Open Question resolution — the spec leaves the exact merge semantics
// unstated beyond "profiles override the base configuration").
func (c *Config) WithProfile(name string) (*Config, error) {
	if name == "" {
		return c, nil
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("unknown profile %q", name)}
	}

	merged := *c
	merged.Profiles = nil

	if profile.PrintWidth != 0 {
		merged.PrintWidth = profile.PrintWidth
	}
	merged.QueryPaths = append(append([]string{}, c.QueryPaths...), profile.QueryPaths...)
	merged.Grammars = mergeGrammars(c.Grammars, profile.Grammars)
	merged.Formatters = mergeFormatters(c.Formatters, profile.Formatters)
	merged.Plugins = mergePlugins(c.Plugins, profile.Plugins)
	merged.Languages = mergeLanguages(c.Languages, profile.Languages)

	return &merged, nil
}

func mergeGrammars(base, override map[string]GrammarConfig) map[string]GrammarConfig {
	out := make(map[string]GrammarConfig, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func mergeFormatters(base, override map[string][]FormatterRef) map[string][]FormatterRef {
	out := make(map[string][]FormatterRef, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		// a profile's formatter chain for a language replaces the base
		// chain outright, rather than concatenating: "first-installed
		// wins" already lets a profile reorder priority by listing its
		// own full chain.
		out[k] = v
	}
	return out
}

func mergePlugins(base, override map[string]PluginConfig) map[string]PluginConfig {
	out := make(map[string]PluginConfig, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func mergeLanguages(base, override map[string]LanguageConfig) map[string]LanguageConfig {
	out := make(map[string]LanguageConfig, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
