// Copyright 2025 KrakLabs
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

// Package testing provides test doubles for weave's core interfaces, so
// extractor, pipeline, and registry tests can run against fixed
// injection shapes without a compiled tree-sitter grammar or an
// installed formatter binary.
//
// # Parsing doubles
//
// FakeNode, FakeTree, and FakeParser satisfy weave.Node, weave.Tree,
// and weave.ParserHandle respectively:
//
//	root := testing.NewFakeByteNode("source_file", 0, 40)
//	parser := testing.NewFakeParser(testing.NewFakeTree(root))
//
// FakeQuery satisfies weave.CompiledQuery, returning a fixed set of
// weave.Match values (and their attached predicate forms) regardless of
// the tree it's run against:
//
//	query := testing.NewFakeQuery(matches, forms)
//
// # Formatter doubles
//
// StubRunner satisfies weave.Runner and weave.Capability. With no
// Outputs configured it formats as identity; NewNotInstalledRunner and
// NewFailingRunner build runners that always fail, for exercising
// RunnerSet fallback and segment-preservation paths:
//
//	runners := weave.NewRunnerSet()
//	runners.Register("sql", "stub", testing.NewStubRunner("stub"))
package testing
