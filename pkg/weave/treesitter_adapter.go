// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// treesitterParser adapts *sitter.Parser to ParserHandle. One instance is
// created per language and reused for the lifetime of a Registry (spec
// §3 "Lifecycle": "Parsers and compiled queries are cached for the
// lifetime of a single engine invocation").
type treesitterParser struct {
	lang *sitter.Language
}

func newTreesitterParser(lang *sitter.Language) *treesitterParser {
	return &treesitterParser{lang: lang}
}

func (p *treesitterParser) Parse(ctx context.Context, content []byte) (Tree, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(p.lang)
	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return &treesitterTree{tree: tree}, nil
}

func (p *treesitterParser) Close() {}

type treesitterTree struct {
	tree *sitter.Tree
}

func (t *treesitterTree) RootNode() Node {
	return treesitterNode{n: t.tree.RootNode()}
}

func (t *treesitterTree) Close() {
	t.tree.Close()
}

type treesitterNode struct {
	n *sitter.Node
}

func (n treesitterNode) Type() string       { return n.n.Type() }
func (n treesitterNode) StartByte() uint32  { return n.n.StartByte() }
func (n treesitterNode) EndByte() uint32    { return n.n.EndByte() }
func (n treesitterNode) HasError() bool     { return n.n.HasError() }
func (n treesitterNode) StartPoint() Point {
	p := n.n.StartPoint()
	return Point{Row: p.Row, Column: p.Column}
}
func (n treesitterNode) EndPoint() Point {
	p := n.n.EndPoint()
	return Point{Row: p.Row, Column: p.Column}
}
func (n treesitterNode) Parent() Node {
	p := n.n.Parent()
	if p == nil {
		return nil
	}
	return treesitterNode{n: p}
}

// treesitterQuery adapts a compiled *sitter.Query plus its textually
// parsed predicate forms (query_scm.go) to CompiledQuery.
type treesitterQuery struct {
	query      *sitter.Query
	predicates [][]PredicateForm
}

// compileInjectionQuery compiles queryText against lang and parses its
// predicate forms. Returns *QueryError on compile failure (spec §7
// "QueryError").
func compileInjectionQuery(lang *sitter.Language, language string, queryText []byte) (*treesitterQuery, error) {
	q, err := sitter.NewQuery(queryText, lang)
	if err != nil {
		return nil, &QueryError{Language: language, Detail: "failed to compile injection query", Err: err}
	}
	return &treesitterQuery{
		query:      q,
		predicates: parsePatternPredicates(queryText),
	}, nil
}

func (q *treesitterQuery) Matches(root Node, src []byte) []Match {
	rn, ok := root.(treesitterNode)
	if !ok {
		// root did not come from this adapter (e.g. a fake Node in
		// tests) — nothing to match.
		return nil
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q.query, rn.n)

	var matches []Match
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match := Match{PatternIndex: int(m.PatternIndex)}
		for _, c := range m.Captures {
			match.Captures = append(match.Captures, Capture{
				Name: q.query.CaptureNameForId(c.Index),
				Node: treesitterNode{n: c.Node},
			})
		}
		matches = append(matches, match)
	}
	return matches
}

func (q *treesitterQuery) Predicates(patternIndex int) []PredicateForm {
	if patternIndex < 0 || patternIndex >= len(q.predicates) {
		return nil
	}
	return q.predicates[patternIndex]
}

func (q *treesitterQuery) Close() {
	q.query.Close()
}
