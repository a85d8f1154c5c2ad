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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/weave/internal/errors"
)

func TestLoadEngineConfig_EmptyPathReturnsZeroValueConfig(t *testing.T) {
	cfg, err := loadEngineConfig("", "")
	if err != nil {
		t.Fatalf("loadEngineConfig(\"\", \"\") returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("loadEngineConfig(\"\", \"\") returned nil config")
	}
	if cfg.PrintWidth != 0 {
		t.Errorf("expected zero-value config, got PrintWidth=%d", cfg.PrintWidth)
	}
}

func TestLoadEngineConfig_MissingFileIsExitConfig(t *testing.T) {
	_, err := loadEngineConfig(filepath.Join(t.TempDir(), "nope.yaml"), "")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	uerr, ok := err.(*errors.UserError)
	if !ok {
		t.Fatalf("expected *errors.UserError, got %T", err)
	}
	if uerr.ExitCode != errors.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", uerr.ExitCode, errors.ExitConfig)
	}
}

func TestLoadEngineConfig_UnknownProfileIsExitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weave.yaml")
	if err := os.WriteFile(path, []byte("print_width: 80\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadEngineConfig(path, "does-not-exist")
	if err == nil {
		t.Fatal("expected an error for an unknown profile")
	}
	uerr, ok := err.(*errors.UserError)
	if !ok {
		t.Fatalf("expected *errors.UserError, got %T", err)
	}
	if uerr.ExitCode != errors.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", uerr.ExitCode, errors.ExitConfig)
	}
}

func TestLanguageSet(t *testing.T) {
	if got := languageSet(nil); got != nil {
		t.Errorf("languageSet(nil) = %v, want nil", got)
	}
	set := languageSet([]string{"go", "sql"})
	if len(set) != 2 {
		t.Fatalf("languageSet returned %d entries, want 2", len(set))
	}
	if _, ok := set["go"]; !ok {
		t.Error(`languageSet should contain "go"`)
	}
	if _, ok := set["sql"]; !ok {
		t.Error(`languageSet should contain "sql"`)
	}
}
