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

// Package weave formats source files that embed regions written in a
// different language: SQL inside a Go string literal, a fenced code
// block inside Markdown, a docstring inside Clojure. It recursively
// locates those regions, formats each with the right tool for its
// language, and splices the result back into the host text byte for
// byte.
//
// # Pipeline overview
//
// A document is processed in five steps, repeated at every nesting
// level (Pipeline.recurse):
//
//  1. Parse the document with the tree-sitter grammar for its language.
//  2. Run the language's injection query against the parse tree,
//     evaluating any `#match?`/`#offset!`/`#escape!`/`#set!` predicates
//     attached to each match (ExtractSegments).
//  3. Recursively format each segment's content under its own language
//     and a narrower print width.
//  4. Splice the formatted replacements back into the host text
//     (Reembed), re-applying per-segment escaping and the segment's
//     original indent (both are removed from the content before step 3).
//  5. Run the host language's own formatter over the result.
//
// # Failure handling
//
// A missing grammar, a broken injection query, or a formatter that
// can't run are all non-fatal below the root: the affected segment is
// preserved verbatim and the failure is reported as a warning. The same
// failures are fatal at the root document, since there's nothing left
// to preserve. A root language with no formatter configured at all is
// not a failure: its text is returned unformatted, with a warning.
//
// # Extending with a grammar source
//
// Registry resolves a language tag to a parser and compiled query via
// the GrammarSource interface, so callers can supply grammars fetched
// or compiled outside this package:
//
//	registry := weave.NewRegistry(weave.BuiltinGrammars{}, configuredQueryPaths)
//	parser, query, err := registry.Resolve("go")
package weave
