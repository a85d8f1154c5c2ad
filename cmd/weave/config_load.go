// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/weave/internal/errors"
	"github.com/kraklabs/weave/pkg/weave"
)

// loadEngineConfig loads the configuration file at path (if any) and
// applies profile, returning a zero-value Config when path is empty so
// callers can run with no configuration file at all (spec §6 "--config
// <PATH>: use this configuration file exclusively").
func loadEngineConfig(path, profile string) (*weave.Config, error) {
	var cfg *weave.Config
	if path == "" {
		cfg = &weave.Config{}
	} else {
		loaded, err := weave.LoadConfig(path)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("cannot load configuration %q", path),
				err.Error(),
				"check the file exists and is valid YAML",
				err,
			)
		}
		cfg = loaded
	}

	if profile != "" {
		merged, err := cfg.WithProfile(profile)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("cannot apply profile %q", profile),
				err.Error(),
				"check profiles in the configuration file for the requested name",
				err,
			)
		}
		cfg = merged
	}

	return cfg, nil
}

// buildRunners wires a weave.RunnerSet from cfg's formatters and
// plugins entries, one Runner per named formatter reference (spec §6
// "formatters", "plugins").
func buildRunners(cfg *weave.Config) (*weave.RunnerSet, error) {
	set := weave.NewRunnerSet()

	for lang, chain := range cfg.Formatters {
		for _, ref := range chain {
			if ref.Plugin != "" {
				pc, ok := cfg.Plugins[ref.Plugin]
				if !ok {
					return nil, errors.NewConfigError(
						fmt.Sprintf("formatter %q references unknown plugin %q", ref.Name, ref.Plugin),
						"no matching entry under plugins",
						"add a plugins entry or fix the reference",
						nil,
					)
				}
				wasmBytes, err := os.ReadFile(pc.Path)
				if err != nil {
					return nil, errors.NewConfigError(
						fmt.Sprintf("cannot read plugin %q", ref.Plugin),
						err.Error(),
						"check the plugin path in the configuration file",
						err,
					)
				}
				languages := languageSet(pc.Languages)
				runner, err := weave.NewPluginRunner(ref.Plugin, wasmBytes, languages)
				if err != nil {
					return nil, errors.NewConfigError(
						fmt.Sprintf("cannot load plugin %q", ref.Plugin),
						err.Error(),
						"check the plugin binary is a valid WebAssembly module",
						err,
					)
				}
				set.Register(lang, ref.Plugin, runner)
				continue
			}

			set.Register(lang, ref.Name, &weave.ExternalRunner{
				Name:      ref.Name,
				Command:   ref.Command,
				Args:      ref.Args,
				Languages: languageSet([]string{lang}),
				Timeout:   ref.Timeout,
			})
		}
	}

	return set, nil
}

// buildRegistry wires a weave.Registry over the built-in grammar source
// and cfg's query_paths (spec §4.1, §4.6).
func buildRegistry(cfg *weave.Config) *weave.Registry {
	return weave.NewRegistry(weave.BuiltinGrammars{}, cfg.QueryPaths)
}

func languageSet(langs []string) map[string]struct{} {
	if len(langs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		set[l] = struct{}{}
	}
	return set
}
