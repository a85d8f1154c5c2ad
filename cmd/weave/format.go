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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	flag "github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/weave/internal/errors"
	"github.com/kraklabs/weave/internal/ui"
	"github.com/kraklabs/weave/pkg/weave"
)

// maxFileWorkers bounds the file-mode worker pool (spec §5.1:
// "GOMAXPROCS-sized, capped at 8").
const maxFileWorkers = 8

// runFormat executes the 'format' CLI command: stdin/stdout for a
// single document, or --dir plus a glob for file mode (spec §6).
func runFormat(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	lang := fs.String("lang", "", "root language tag (required when reading stdin)")
	printWidth := fs.Int("print-width", 80, "initial print width")
	skipRoot := fs.Bool("skip-root", false, "do not invoke the root formatter; still format and reembed injections")
	configPath := fs.String("config", "", "use this configuration file exclusively")
	profile := fs.String("profile", "", "apply this named profile from the configuration file")
	dir := fs.String("dir", "", "working directory for file-mode operation")
	globPattern := fs.String("glob", "**/*", "glob selecting files under --dir (filepath.Glob syntax: ** is not recursive and matches one path element)")
	exclude := fs.StringArray("exclude", nil, "exclusion pattern (repeatable)")
	check := fs.Bool("check", false, "do not write; exit nonzero if any input would change")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: weave format [options]

Formats a document that may embed regions written in another language,
delegating each region (and optionally the root document) to a
configured formatter, then splices the results back byte-exact.

With no --dir, reads the document from stdin and writes it to stdout.
With --dir, formats every file the glob selects under that directory.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  weave format --lang go < main.go
  weave format --dir . --glob "**/*.go" --check
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitUsage)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: globals.SlogLevel()}))
	slog.SetDefault(logger)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("weave.metrics.start", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Warn("weave.metrics.error", "err", err)
			}
		}()
	}

	cfg, err := loadEngineConfig(*configPath, *profile)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	runners, err := buildRunners(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	registry := buildRegistry(cfg)
	defer registry.Close()

	pipeline := weave.NewPipeline(registry, runners)
	pipeline.Logger = logger

	if *dir == "" {
		runFormatStdin(pipeline, *lang, *printWidth, *skipRoot, *check, globals)
		return
	}

	runFormatDir(pipeline, *dir, *globPattern, exclude, *printWidth, *skipRoot, *check, globals)
}

// runFormatStdin formats a single document read from stdin and writes
// the result to stdout (spec §6 "Standard input carries the source
// document").
func runFormatStdin(pipeline *weave.Pipeline, lang string, printWidth int, skipRoot, check bool, globals GlobalFlags) {
	if lang == "" {
		errors.FatalError(errors.NewUsageError(
			"--lang is required when reading stdin",
			"no --dir was given, so the root language tag cannot be inferred from a file extension",
			"pass --lang <NAME>",
		), globals.JSON)
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		errors.FatalError(errors.NewUsageError("failed to read stdin", err.Error(), "check the input stream"), globals.JSON)
	}

	doc := weave.Document{Text: input, Language: lang, PrintWidth: printWidth}
	out, warnings, ferr := pipeline.FormatDocument(context.Background(), doc, skipRoot)
	for _, w := range warnings {
		ui.Warningf("%v", w)
	}
	if ferr != nil {
		errors.FatalError(classifyRootError(lang, ferr), globals.JSON)
	}

	if check {
		if !bytes.Equal(input, out) {
			os.Exit(errors.ExitCheckDirty)
		}
		os.Exit(errors.ExitSuccess)
	}

	os.Stdout.Write(out)
}

// fileResult is one file's outcome in a file-mode run.
type fileResult struct {
	path    string
	changed bool
	err     error
}

// runFormatDir formats every file root+glob selects, writing results
// back unless check is set (spec §6 "File mode").
func runFormatDir(pipeline *weave.Pipeline, dir, globPattern string, exclude *[]string, printWidth int, skipRoot, check bool, globals GlobalFlags) {
	files, err := matchFiles(dir, globPattern, *exclude)
	if err != nil {
		errors.FatalError(errors.NewUsageError("failed to enumerate files", err.Error(), "check --dir and --glob"), globals.JSON)
	}
	if len(files) == 0 {
		os.Exit(errors.ExitSuccess)
	}

	progressCfg := NewProgressConfig(globals)
	bar := NewProgressBar(progressCfg, int64(len(files)), "formatting")

	results := make(chan fileResult, len(files))
	jobs := make(chan string, len(files))
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	workers := runtime.GOMAXPROCS(0)
	if workers > maxFileWorkers {
		workers = maxFileWorkers
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- formatOneFile(pipeline, path, printWidth, skipRoot, check)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	anyDirty := false
	exitCode := 0
	var dirtyFiles []string
	for r := range results {
		if r.err != nil {
			ue := classifyRootError(languageForPath(r.path), r.err)
			ui.Errorf("%s: %s", r.path, ue.Message)
			if ue.ExitCode > exitCode {
				exitCode = ue.ExitCode
			}
			continue
		}
		if r.changed {
			anyDirty = true
			dirtyFiles = append(dirtyFiles, r.path)
			if check {
				ui.Warningf("would reformat %s", r.path)
			} else {
				ui.Successf("formatted %s", r.path)
			}
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	if check && anyDirty {
		errors.FatalError(errors.NewCheckDirtyError(
			fmt.Sprintf("%d file(s) would be reformatted", len(dirtyFiles)),
			strings.Join(dirtyFiles, ", "),
		), globals.JSON)
	}
	os.Exit(errors.ExitSuccess)
}

// formatOneFile formats a single file on disk, writing the result back
// unless check is set.
func formatOneFile(pipeline *weave.Pipeline, path string, printWidth int, skipRoot, check bool) fileResult {
	input, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}

	lang := languageForPath(path)
	if lang == "" {
		return fileResult{path: path}
	}

	doc := weave.Document{Text: input, Language: lang, PrintWidth: printWidth}
	out, _, ferr := pipeline.FormatDocument(context.Background(), doc, skipRoot)
	if ferr != nil {
		return fileResult{path: path, err: ferr}
	}

	changed := !bytes.Equal(input, out)
	if !check && changed {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fileResult{path: path, err: err}
		}
	}
	return fileResult{path: path, changed: changed}
}

// matchFiles expands globPattern under dir, dropping any path matching
// one of exclude's patterns.
func matchFiles(dir, globPattern string, exclude []string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, globPattern))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if matchesAny(m, exclude) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, path); ok {
			return true
		}
	}
	return false
}

// classifyRootError translates a fatal error from FormatDocument into a
// *errors.UserError with the exit code spec §7 implies for its kind:
// a missing grammar or broken injection query is a configuration
// problem (ExitConfig), while a failing formatter invocation is
// ExitFormatter.
func classifyRootError(lang string, err error) *errors.UserError {
	switch err.(type) {
	case *weave.GrammarUnavailableError, *weave.QueryError, *weave.ConfigurationError:
		return errors.NewConfigError(
			fmt.Sprintf("cannot format %s document", lang),
			err.Error(),
			"check the grammar and injection query configured for this language",
			err,
		)
	default:
		return errors.NewFormatterError(
			fmt.Sprintf("failed to format %s document", lang),
			err.Error(),
			"check the formatter chain configured for this language",
			err,
		)
	}
}

// languageForPath maps a file extension to a weave language tag, or ""
// if the extension isn't recognized (spec §6 doesn't specify this
// mapping; it's the minimal front-end glue this repository owns).
func languageForPath(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".py":
		return "python"
	case ".sh":
		return "bash"
	case ".md", ".markdown":
		return "markdown"
	case ".clj", ".cljs", ".cljc":
		return "clojure"
	default:
		return ""
	}
}
