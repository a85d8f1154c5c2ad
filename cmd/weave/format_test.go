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
	"errors"
	"os"
	"path/filepath"
	"testing"

	wveerrors "github.com/kraklabs/weave/internal/errors"
	"github.com/kraklabs/weave/pkg/weave"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app.js", "javascript"},
		{"app.ts", "typescript"},
		{"script.py", "python"},
		{"run.sh", "bash"},
		{"README.md", "markdown"},
		{"notes.markdown", "markdown"},
		{"core.clj", "clojure"},
		{"core.cljs", "clojure"},
		{"unknown.xyz", ""},
		{"noextension", ""},
	}
	for _, tt := range tests {
		if got := languageForPath(tt.path); got != tt.want {
			t.Errorf("languageForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClassifyRootError_GrammarAndQueryErrorsAreConfig(t *testing.T) {
	cases := []error{
		&weave.GrammarUnavailableError{Language: "cobol"},
		&weave.QueryError{Language: "go", Err: errors.New("bad query")},
		&weave.ConfigurationError{Err: errors.New("bad config")},
	}
	for _, err := range cases {
		uerr := classifyRootError("go", err)
		if uerr.ExitCode != wveerrors.ExitConfig {
			t.Errorf("classifyRootError(%T) ExitCode = %d, want %d", err, uerr.ExitCode, wveerrors.ExitConfig)
		}
	}
}

func TestClassifyRootError_OtherErrorsAreFormatter(t *testing.T) {
	uerr := classifyRootError("go", &weave.FormatterError{Kind: weave.FormatterErrorNonZeroExit, Err: errors.New("boom")})
	if uerr.ExitCode != wveerrors.ExitFormatter {
		t.Errorf("ExitCode = %d, want %d", uerr.ExitCode, wveerrors.ExitFormatter)
	}
}

func TestMatchesAny(t *testing.T) {
	if !matchesAny("bar_test.go", []string{"*_test.go"}) {
		t.Error(`matchesAny("bar_test.go", ["*_test.go"]) should match on base name`)
	}
	if matchesAny("bar.go", []string{"*_test.go"}) {
		t.Error(`matchesAny("bar.go", ["*_test.go"]) should not match`)
	}
}

func TestMatchFiles_ExcludesMatchingBaseNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.go", "a_test.go", "b.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("package main\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := matchFiles(dir, "*.go", []string{"*_test.go"})
	if err != nil {
		t.Fatalf("matchFiles returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("matchFiles returned %d files, want 2 (got %v)", len(files), files)
	}
	for _, f := range files {
		if filepath.Base(f) == "a_test.go" {
			t.Error("matchFiles should have excluded a_test.go")
		}
	}
}

func TestJoinChain(t *testing.T) {
	if got := joinChain(nil); got != "(none)" {
		t.Errorf("joinChain(nil) = %q, want %q", got, "(none)")
	}
	if got := joinChain([]string{"gofmt"}); got != "gofmt" {
		t.Errorf("joinChain single = %q, want %q", got, "gofmt")
	}
	if got := joinChain([]string{"sqlfmt", "pgformatter"}); got != "sqlfmt -> pgformatter" {
		t.Errorf("joinChain multi = %q, want %q", got, "sqlfmt -> pgformatter")
	}
}
