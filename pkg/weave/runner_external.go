// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ExternalRunner invokes a configured external formatter process over
// stdin/stdout, the way `weave` shells out the way the rest of this
// module's teacher shells out to `git` (spec §4.2, §6 "formatters").
//
// Command and Args may reference `$textwidth` and `$language`, which are
// substituted with the invocation's print width and language tag before
// exec (spec §6 "formatters[].args").
type ExternalRunner struct {
	Name       string
	Command    string
	Args       []string
	Languages  map[string]struct{} // nil means "every language"
	Timeout    time.Duration        // zero means no deadline beyond ctx
}

// CanFormat reports whether r is configured for language.
func (r *ExternalRunner) CanFormat(language string) bool {
	if r.Languages == nil {
		return true
	}
	_, ok := r.Languages[language]
	return ok
}

// Format spawns the configured command with text on stdin and returns
// its stdout, substituting $textwidth/$language into Command/Args first
// (spec §4.2 "External process capability").
func (r *ExternalRunner) Format(ctx context.Context, text []byte, language string, printWidth int) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	name := substituteVars(r.Command, language, printWidth)
	if _, err := exec.LookPath(name); err != nil {
		return nil, &FormatterError{Kind: FormatterErrorNotInstalled, Formatter: r.Name, Err: err}
	}

	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = substituteVars(a, language, printWidth)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &FormatterError{Kind: FormatterErrorTimeout, Formatter: r.Name, Stderr: stderr.String(), Err: ctx.Err()}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &FormatterError{Kind: FormatterErrorNonZeroExit, Formatter: r.Name, Stderr: stderr.String(), Err: err}
		}
		return nil, &FormatterError{Kind: FormatterErrorNotInstalled, Formatter: r.Name, Err: err}
	}

	if stdout.Len() == 0 && len(text) > 0 {
		return nil, &FormatterError{Kind: FormatterErrorEmptyOutput, Formatter: r.Name, Stderr: stderr.String()}
	}

	return stdout.Bytes(), nil
}

// substituteVars replaces `$textwidth` and `$language` tokens in s.
func substituteVars(s, language string, printWidth int) string {
	s = strings.ReplaceAll(s, "$textwidth", strconv.Itoa(printWidth))
	s = strings.ReplaceAll(s, "$language", language)
	return s
}
