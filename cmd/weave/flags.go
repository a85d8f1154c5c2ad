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

import "log/slog"

// GlobalFlags carries the flags common to every weave subcommand.
type GlobalFlags struct {
	// JSON selects machine-readable output for commands that support it.
	JSON bool
	// Quiet suppresses progress bars and non-error human output.
	Quiet bool
	// NoColor disables colored terminal output.
	NoColor bool
	// LogLevel is the diagnostic verbosity requested via --log-level
	// (spec §6 "--log-level <LEVEL>").
	LogLevel string
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info for an
// empty or unrecognized value.
func (g GlobalFlags) SlogLevel() slog.Level {
	switch g.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
