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

// Package main implements the weave CLI, a formatter orchestrator for
// source files that embed regions written in a different language.
//
// Usage:
//
//	weave format --lang go < main.go     Format stdin, write to stdout
//	weave format --dir . --check         Check the files --glob selects under .
//	weave languages                      Show the resolved formatter chains
//	weave version                        Show version and exit
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/weave/internal/errors"
	"github.com/kraklabs/weave/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	globalFlags := flag.NewFlagSet("weave", flag.ContinueOnError)
	showVersion := globalFlags.Bool("version", false, "show version and exit")
	jsonOut := globalFlags.Bool("json", false, "machine-readable output")
	quiet := globalFlags.BoolP("quiet", "q", false, "suppress progress and non-error output")
	noColor := globalFlags.Bool("no-color", false, "disable colored output")
	logLevel := globalFlags.String("log-level", "info", "diagnostic verbosity (debug, info, warn, error)")

	globalFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, `weave - an injection-aware formatter orchestrator

Usage:
  weave <command> [options]

Commands:
  format       Format a document or a directory of files
  languages    Show the resolved language -> formatter chain table
  version      Show version and exit

Global options:
  --json          Machine-readable output
  -q, --quiet     Suppress progress and non-error output
  --no-color      Disable colored output
  --log-level     Diagnostic verbosity (debug, info, warn, error)
  --version       Show version and exit

`)
	}
	globalFlags.SetInterspersed(false)
	if err := globalFlags.Parse(os.Args[1:]); err != nil {
		os.Exit(errors.ExitUsage)
	}

	ui.InitColors(*noColor)
	globals := GlobalFlags{JSON: *jsonOut, Quiet: *quiet, NoColor: *noColor, LogLevel: *logLevel}

	if *showVersion {
		fmt.Printf("weave version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(errors.ExitSuccess)
	}

	args := globalFlags.Args()
	if len(args) == 0 {
		globalFlags.Usage()
		os.Exit(errors.ExitUsage)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "format":
		runFormat(cmdArgs, globals)
	case "languages":
		runLanguages(cmdArgs, globals)
	case "version":
		fmt.Printf("weave version %s\n", version)
		os.Exit(errors.ExitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		globalFlags.Usage()
		os.Exit(errors.ExitUsage)
	}
}
