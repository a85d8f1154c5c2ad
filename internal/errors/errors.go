// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the weave CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for the CLI's error categories.
//
// # Usage Example
//
// Creating and displaying errors:
//
//	err := errors.NewConfigError(
//	    "Cannot load weave configuration",
//	    "the query_paths entry \"./queries\" does not exist",
//	    "create the directory or remove it from query_paths",
//	    underlyingErr,
//	)
//	if err != nil {
//	    // Simple approach: print and exit with colored output
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	err := errors.NewFormatterError(
//	    "gofmt failed on internal/weave/pipeline.go",
//	    "exit status 2: internal/weave/pipeline.go:42:1: expected declaration",
//	    "fix the syntax error and re-run weave format",
//	    underlyingErr,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Output (with colors):
//	// Error: gofmt failed on internal/weave/pipeline.go
//	// Cause: exit status 2: internal/weave/pipeline.go:42:1: expected declaration
//	// Fix:   fix the syntax error and re-run weave format
//
// For JSON output:
//
//	jsonData := err.ToJSON()
//	json.NewEncoder(os.Stderr).Encode(jsonData)
//	// Output:
//	// {
//	//   "error": "gofmt failed on internal/weave/pipeline.go",
//	//   "cause": "exit status 2: ...",
//	//   "fix": "fix the syntax error and re-run weave format",
//	//   "exit_code": 3
//	// }
//
// # Exit Codes
//
// The package defines the exit codes weave's CLI surface promises:
//   - ExitSuccess (0): Formatting succeeded, or --check found nothing to change
//   - ExitCheckDirty (1): --check found files that are not correctly formatted
//   - ExitConfig (2): Configuration error (malformed file, unresolved formatter/plugin reference)
//   - ExitFormatter (3): Unrecoverable formatter error at the root document
//   - ExitUsage (4): Invalid invocation (bad flags, conflicting arguments)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates formatting succeeded, or a --check run found
	// every file already correctly formatted.
	ExitSuccess = 0

	// ExitCheckDirty indicates a --check run found one or more files that
	// would be reformatted.
	ExitCheckDirty = 1

	// ExitConfig indicates a configuration error: a malformed config file,
	// or a formatter/plugin/grammar reference that could not be resolved.
	ExitConfig = 2

	// ExitFormatter indicates an unrecoverable formatter error at the
	// root document (a segment-level formatter failure is not fatal; the
	// segment is preserved instead).
	ExitFormatter = 3

	// ExitUsage indicates invalid invocation: bad flags, conflicting
	// arguments, or no input given.
	ExitUsage = 4
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
//
// It returns a simple error message string. If an underlying error is present,
// it appends that error's message for context.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
//
// It returns the underlying error, allowing standard library error inspection
// functions to work with error chains.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for errors related to a missing, invalid, or malformed
// weave configuration file, or a formatter/plugin/grammar reference it
// names that could not be resolved.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load weave configuration",
//	    "~/.config/weave/config.yaml references plugin \"sqlfmt\" which is not defined",
//	    "add a plugins.sqlfmt entry or remove the reference",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConfig,
		Err:      err,
	}
}

// NewFormatterError creates a formatter error with exit code ExitFormatter.
//
// Use this when the root document's own formatter fails to run: a
// nonzero exit, empty output despite non-empty input, a timeout, or a
// missing executable with no remaining fallback in its chain.
//
// Example:
//
//	return NewFormatterError(
//	    "gofmt failed on main.go",
//	    "exit status 2: main.go:10:1: expected declaration, found 'EOF'",
//	    "fix the syntax error and re-run weave format",
//	    err,
//	)
func NewFormatterError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitFormatter,
		Err:      err,
	}
}

// NewUsageError creates an invalid-invocation error with exit code
// ExitUsage. Usage errors typically do not wrap an underlying error.
//
// Example:
//
//	return NewUsageError(
//	    "--check and --write are mutually exclusive",
//	    "both flags were set on the command line",
//	    "pass only one of --check or --write",
//	)
func NewUsageError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitUsage,
		Err:      nil, // Usage errors typically don't wrap underlying errors
	}
}

// NewCheckDirtyError creates the error FatalError prints when a --check
// run finds files that are not correctly formatted, with exit code
// ExitCheckDirty. Check-dirty is not itself a failure to report to the
// user as a bug, so it carries no Fix beyond re-running without --check.
//
// Example:
//
//	return NewCheckDirtyError(
//	    "3 files would be reformatted",
//	    "internal/weave/pipeline.go, internal/weave/config.go, cmd/weave/format.go",
//	)
func NewCheckDirtyError(msg, cause string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      "run `weave format` without --check to apply the changes",
		ExitCode: ExitCheckDirty,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter.
//
// Example output:
//
//	Error: Cannot load weave configuration
//	Cause: ~/.config/weave/config.yaml references plugin "sqlfmt" which is not defined
//	Fix:   add a plugins.sqlfmt entry or remove the reference
//
// Empty Cause or Fix fields are omitted from the output.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting to ensure thread safety.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
//
// This structure is suitable for machine consumption and integrates with
// CLI commands that support --json output mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
//
// Fields with empty values (Cause, Fix) are omitted from JSON output
// using the omitempty tag. This keeps JSON output clean when additional
// context is not available.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// If the error is a UserError, it uses Format() for colored output or
// ToJSON() for JSON mode. For non-UserError types, it prints a simple
// error message and exits with ExitFormatter, since an error that
// reached this point without being classified is most likely an
// unrecoverable formatter or engine failure.
//
// This function never returns - it always calls os.Exit().
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encode error is intentionally ignored since we're about to exit.
			// If JSON encoding fails, the program will still exit with the correct code.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	// Fallback for non-UserError
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitFormatter)
}
