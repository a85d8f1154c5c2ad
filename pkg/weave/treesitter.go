// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import "context"

// Node is the minimal AST node surface the extractor and re-embedder
// need. It is satisfied both by the real tree-sitter adapter
// (treesitterNode, wrapping github.com/smacker/go-tree-sitter) and by
// fake nodes used in tests, so that extraction/re-embedding logic never
// depends on a real compiled grammar (spec Design Notes §9: "testable
// via an in-memory stub").
type Node interface {
	Type() string
	StartByte() uint32
	EndByte() uint32
	StartPoint() Point
	EndPoint() Point
	HasError() bool
	// Parent returns the node's immediate parent, or nil at the root.
	// Used to anchor the "parent scope" a combined injection group is
	// keyed against (spec §3, §4.3 step 6).
	Parent() Node
}

// Tree is a parsed document.
type Tree interface {
	RootNode() Node
	Close()
}

// ParserHandle is an opaque, reusable parser for one language tag (spec
// §3 "Parser handle").
type ParserHandle interface {
	Parse(ctx context.Context, content []byte) (Tree, error)
	Close()
}

// Capture is one named binding produced by a query match.
type Capture struct {
	Name string
	Node Node
}

// Match is one injection-query match: a pattern index plus the captures
// it bound (spec §3 "Injection query... yields captures").
type Match struct {
	PatternIndex int
	Captures     []Capture
}

// CompiledQuery is a compiled injection query together with the
// predicate forms attached to each of its patterns (spec §3 "Injection
// query").
type CompiledQuery interface {
	// Matches runs the query over root and returns every match, in
	// document order, that the underlying query engine reports.
	Matches(root Node, src []byte) []Match
	// Predicates returns the `#predicate!`/`#set!` forms textually
	// attached to the given pattern index.
	Predicates(patternIndex int) []PredicateForm
	Close()
}
