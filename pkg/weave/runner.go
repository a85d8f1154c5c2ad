// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"context"
	"fmt"
)

// Runner is the Formatter Runner contract (spec §4.2): given text in
// language at printWidth, produce formatted text or a *FormatterError.
type Runner interface {
	Format(ctx context.Context, text []byte, language string, printWidth int) ([]byte, error)
}

// Capability reports whether a Runner can handle a given language, so a
// RunnerSet can pick the first configured formatter able to run without
// invoking it (spec §4.2, §9).
type Capability interface {
	CanFormat(language string) bool
}

// namedRunner pairs a Runner with the name used in logs, config, and
// FormatterError.Formatter.
type namedRunner struct {
	name   string
	runner Runner
}

// RunnerSet resolves a language to its first capable, installed Runner
// and delegates formatting to it. The spec's Open Question on multiple
// configured formatters per language ("first-installed wins" vs. "run
// in sequence") is resolved here in favor of first-installed: the set
// tries each configured runner in order and uses the first one that
// reports itself capable, rather than piping output from one formatter
// into the next (spec §4.2, §9).
type RunnerSet struct {
	byLanguage map[string][]namedRunner
}

// NewRunnerSet builds an empty RunnerSet; use Register to wire in
// per-language formatter chains from configuration.
func NewRunnerSet() *RunnerSet {
	return &RunnerSet{byLanguage: make(map[string][]namedRunner)}
}

// Register appends runner to the chain configured for language. Earlier
// registrations take priority (spec §4.2 "first-installed wins").
func (s *RunnerSet) Register(language, name string, runner Runner) {
	s.byLanguage[language] = append(s.byLanguage[language], namedRunner{name: name, runner: runner})
}

// Format finds the first capable, installed runner configured for
// language and delegates to it. If every configured runner for the
// language reports FormatterErrorNotInstalled, that last error is
// returned; if no runner at all is configured for language, Format
// returns a *FormatterError with FormatterErrorNotInstalled and an
// empty Formatter name, signaling "nothing configured" to the caller
// (spec §4.2: segment/root not formatted; Pipeline preserves such a
// segment and returns such a root unformatted, with a warning).
func (s *RunnerSet) Format(ctx context.Context, text []byte, language string, printWidth int) ([]byte, error) {
	chain := s.byLanguage[language]
	if len(chain) == 0 {
		return nil, &FormatterError{Kind: FormatterErrorNotInstalled, Err: fmt.Errorf("no formatter configured for language %q", language)}
	}

	var lastErr error
	for _, nr := range chain {
		if cap, ok := nr.runner.(Capability); ok && !cap.CanFormat(language) {
			continue
		}
		out, err := nr.runner.Format(ctx, text, language, printWidth)
		if err == nil {
			return out, nil
		}
		if fe, ok := err.(*FormatterError); ok && fe.Kind == FormatterErrorNotInstalled {
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr == nil {
		lastErr = &FormatterError{Kind: FormatterErrorNotInstalled, Err: fmt.Errorf("no installed formatter for language %q", language)}
	}
	return nil, lastErr
}
