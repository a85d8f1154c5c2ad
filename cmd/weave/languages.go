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
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/weave/internal/errors"
	"github.com/kraklabs/weave/internal/output"
	"github.com/kraklabs/weave/internal/ui"
)

// languageEntry is one row of the languages command's output: a
// language tag and the formatter/plugin chain configured for it, after
// config and profile merge.
type languageEntry struct {
	Language  string   `json:"language"`
	Formatter []string `json:"formatters"`
}

// runLanguages executes the 'languages' CLI command, printing the
// resolved language -> formatter chain table (spec §1.3 supplemented
// feature, grounded in the teacher's `cie status` diagnostic shape).
func runLanguages(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	configPath := fs.String("config", "", "use this configuration file exclusively")
	profile := fs.String("profile", "", "apply this named profile from the configuration file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: weave languages [options]

Prints, for each language configured under "formatters", the resolved
chain of formatter/plugin names that would be tried in order.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	cfg, err := loadEngineConfig(*configPath, *profile)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	langs := make([]string, 0, len(cfg.Formatters))
	for lang := range cfg.Formatters {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	entries := make([]languageEntry, 0, len(langs))
	for _, lang := range langs {
		chain := cfg.Formatters[lang]
		names := make([]string, len(chain))
		for i, ref := range chain {
			if ref.Plugin != "" {
				names[i] = ref.Plugin + " (plugin)"
				continue
			}
			names[i] = ref.Name
		}
		entries = append(entries, languageEntry{Language: lang, Formatter: names})
	}

	if globals.JSON {
		if err := output.JSON(entries); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	if len(entries) == 0 {
		ui.Info("no languages configured")
		return
	}

	ui.Header("weave languages")
	for _, e := range entries {
		fmt.Printf("  %s: %s\n", ui.Label(e.Language), joinChain(e.Formatter))
	}
}

func joinChain(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += " -> " + n
	}
	return out
}
