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

package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/kraklabs/weave/pkg/weave"
)

// FakeNode is a minimal weave.Node for tests that don't have a real
// tree-sitter grammar available. Construct one with NewFakeNode or
// NewFakeByteNode.
type FakeNode struct {
	NodeType   string
	Start, End uint32
	StartPt    weave.Point
	EndPt      weave.Point
	Err        bool
	ParentNode weave.Node
}

// NewFakeNode builds a FakeNode with explicit row/column points.
func NewFakeNode(typ string, start, end uint32, startPt, endPt weave.Point) *FakeNode {
	return &FakeNode{NodeType: typ, Start: start, End: end, StartPt: startPt, EndPt: endPt}
}

// NewFakeByteNode builds a FakeNode on a single source line, deriving
// its points from byte offsets directly (row 0, column = byte offset).
// This is enough for tests that only exercise byte-range logic.
func NewFakeByteNode(typ string, start, end uint32) *FakeNode {
	return NewFakeNode(typ, start, end, weave.Point{Row: 0, Column: start}, weave.Point{Row: 0, Column: end})
}

func (n *FakeNode) Type() string           { return n.NodeType }
func (n *FakeNode) StartByte() uint32       { return n.Start }
func (n *FakeNode) EndByte() uint32         { return n.End }
func (n *FakeNode) StartPoint() weave.Point { return n.StartPt }
func (n *FakeNode) EndPoint() weave.Point   { return n.EndPt }
func (n *FakeNode) HasError() bool          { return n.Err }
func (n *FakeNode) Parent() weave.Node      { return n.ParentNode }

// FakeTree is a weave.Tree wrapping a single FakeNode root.
type FakeTree struct {
	Root   weave.Node
	closed bool
}

// NewFakeTree wraps root in a FakeTree.
func NewFakeTree(root weave.Node) *FakeTree {
	return &FakeTree{Root: root}
}

func (t *FakeTree) RootNode() weave.Node { return t.Root }
func (t *FakeTree) Close()               { t.closed = true }

// Closed reports whether Close has been called, so tests can assert
// parser handles release their trees.
func (t *FakeTree) Closed() bool { return t.closed }

// FakeParser is a weave.ParserHandle that returns a canned Tree or
// error on every call to Parse, regardless of the content given. Set
// Tree to the FakeTree the test wants ExtractSegments/Pipeline to
// operate on, or set Err to simulate a parse failure.
type FakeParser struct {
	Tree   weave.Tree
	Err    error
	closed bool
	calls  int
}

// NewFakeParser builds a FakeParser that always returns tree.
func NewFakeParser(tree weave.Tree) *FakeParser {
	return &FakeParser{Tree: tree}
}

func (p *FakeParser) Parse(ctx context.Context, content []byte) (weave.Tree, error) {
	p.calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Tree, nil
}

func (p *FakeParser) Close() { p.closed = true }

// Calls reports how many times Parse was invoked.
func (p *FakeParser) Calls() int { return p.calls }

// FakeQuery is a weave.CompiledQuery returning canned matches and
// predicate forms, so extractor/pipeline tests can exercise a fixed
// injection shape without a real .scm grammar.
type FakeQuery struct {
	MatchesByRoot func(root weave.Node, src []byte) []weave.Match
	Forms         map[int][]weave.PredicateForm
	closed        bool
}

// NewFakeQuery builds a FakeQuery that always returns the same matches
// regardless of root/src.
func NewFakeQuery(matches []weave.Match, forms map[int][]weave.PredicateForm) *FakeQuery {
	return &FakeQuery{
		MatchesByRoot: func(weave.Node, []byte) []weave.Match { return matches },
		Forms:         forms,
	}
}

func (q *FakeQuery) Matches(root weave.Node, src []byte) []weave.Match {
	if q.MatchesByRoot == nil {
		return nil
	}
	return q.MatchesByRoot(root, src)
}

func (q *FakeQuery) Predicates(patternIndex int) []weave.PredicateForm {
	return q.Forms[patternIndex]
}

func (q *FakeQuery) Close() { q.closed = true }

// StubRunnerCall records one invocation of a StubRunner, for tests that
// assert on call order or arguments.
type StubRunnerCall struct {
	Text       string
	Language   string
	PrintWidth int
}

// StubRunner is a weave.Runner and weave.Capability double. Format
// looks up the input text verbatim in Outputs; if absent, it returns
// the input text unchanged (identity formatting) unless Err is set, in
// which case every call fails with Err. Use Languages to restrict
// CanFormat to a subset; a nil Languages accepts every language.
type StubRunner struct {
	Name      string
	Languages map[string]struct{}
	Outputs   map[string]string
	Err       error

	mu    sync.Mutex
	calls []StubRunnerCall
}

// NewStubRunner builds a StubRunner named name with no restrictions and
// no canned outputs (every call formats as identity).
func NewStubRunner(name string) *StubRunner {
	return &StubRunner{Name: name, Outputs: map[string]string{}}
}

func (r *StubRunner) CanFormat(language string) bool {
	if r.Languages == nil {
		return true
	}
	_, ok := r.Languages[language]
	return ok
}

func (r *StubRunner) Format(ctx context.Context, text []byte, language string, printWidth int) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, StubRunnerCall{Text: string(text), Language: language, PrintWidth: printWidth})
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if out, ok := r.Outputs[string(text)]; ok {
		return []byte(out), nil
	}
	return text, nil
}

// Calls returns every call StubRunner.Format has recorded, in order.
func (r *StubRunner) Calls() []StubRunnerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StubRunnerCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// NewNotInstalledRunner builds a StubRunner whose every call fails with
// FormatterErrorNotInstalled, for exercising RunnerSet fallback chains.
func NewNotInstalledRunner(name string) *StubRunner {
	return &StubRunner{
		Name: name,
		Err: &weave.FormatterError{
			Kind:      weave.FormatterErrorNotInstalled,
			Formatter: name,
			Err:       fmt.Errorf("%s: executable not found", name),
		},
	}
}

// NewFailingRunner builds a StubRunner whose every call fails with a
// FormatterError of the given kind, for exercising preservation and
// root-failure paths.
func NewFailingRunner(name string, kind weave.FormatterErrorKind) *StubRunner {
	return &StubRunner{
		Name: name,
		Err: &weave.FormatterError{
			Kind:      kind,
			Formatter: name,
			Err:       fmt.Errorf("%s: simulated %s", name, kind),
		},
	}
}
