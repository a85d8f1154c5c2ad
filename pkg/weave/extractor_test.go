// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wtesting "github.com/kraklabs/weave/internal/testing"
)

// matchForContent builds a single-capture match carrying the predicate
// forms a query author would attach to an @injection.content capture.
func matchForContent(content Node) Match {
	return Match{PatternIndex: 0, Captures: []Capture{{Name: "injection.content", Node: content}}}
}

func setLanguageForm(lang string) PredicateForm {
	return PredicateForm{Name: "set!", Args: []PredicateArg{{Literal: "injection.language"}, {Literal: lang}}}
}

func combinedForm() PredicateForm {
	return PredicateForm{Name: "set!", Args: []PredicateArg{{Literal: "injection.combined"}}}
}

func TestExtractSegments_NilQueryReturnsNil(t *testing.T) {
	assert.Nil(t, ExtractSegments(nil, nil, nil, nil))
}

func TestExtractSegments_BasicCapture(t *testing.T) {
	src := []byte(`x := "SELECT 1"`)
	content := wtesting.NewFakeByteNode("interpreted_string_literal", 6, 15)

	forms := map[int][]PredicateForm{0: {setLanguageForm("sql")}}
	query := wtesting.NewFakeQuery([]Match{matchForContent(content)}, forms)

	segments := ExtractSegments(query, wtesting.NewFakeByteNode("source_file", 0, uint32(len(src))), src, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, "sql", segments[0].Language)
	assert.Equal(t, ByteRange{Start: 6, End: 15}, segments[0].ByteRange)
}

func TestExtractSegments_OffsetClampedToCapture(t *testing.T) {
	src := []byte(`x := "SELECT 1"`)
	content := wtesting.NewFakeByteNode("interpreted_string_literal", 6, 15)

	// A wildly out-of-range offset (100 columns past the end) must clamp
	// back to the capture's own [6, 15) range rather than spill into the
	// rest of the document (spec §9 Open Question).
	forms := map[int][]PredicateForm{
		0: {
			{Name: "offset!", Args: []PredicateArg{
				{IsCapture: true, Capture: "injection.content"},
				{Literal: "0"}, {Literal: "100"}, {Literal: "0"}, {Literal: "100"},
			}},
			setLanguageForm("sql"),
		},
	}
	query := wtesting.NewFakeQuery([]Match{matchForContent(content)}, forms)

	segments := ExtractSegments(query, wtesting.NewFakeByteNode("source_file", 0, uint32(len(src))), src, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, ByteRange{Start: 15, End: 15}, segments[0].ByteRange)
}

func TestExtractSegments_OverlappingSegmentsDropLater(t *testing.T) {
	src := []byte(`0123456789`)
	first := wtesting.NewFakeByteNode("a", 0, 5)
	second := wtesting.NewFakeByteNode("b", 3, 8) // overlaps [0,5)

	forms := map[int][]PredicateForm{
		0: {setLanguageForm("go")},
		1: {setLanguageForm("sql")},
	}
	matches := []Match{
		{PatternIndex: 0, Captures: []Capture{{Name: "injection.content", Node: first}}},
		{PatternIndex: 1, Captures: []Capture{{Name: "injection.content", Node: second}}},
	}
	query := wtesting.NewFakeQuery(matches, forms)

	segments := ExtractSegments(query, wtesting.NewFakeByteNode("source_file", 0, uint32(len(src))), src, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, "go", segments[0].Language)
}

func TestExtractSegments_SkipsMatchWithoutLanguage(t *testing.T) {
	src := []byte(`hello`)
	content := wtesting.NewFakeByteNode("x", 0, 5)
	query := wtesting.NewFakeQuery([]Match{matchForContent(content)}, nil)

	segments := ExtractSegments(query, wtesting.NewFakeByteNode("source_file", 0, 5), src, nil)
	assert.Empty(t, segments)
}

// TestExtractSegments_CombinedKeyDistinguishesParentScopes covers spec
// §3/§4.3 step 6: combined grouping is keyed by (parent_injection_site,
// language), not language alone. Two unrelated pairs of sibling
// captures, sharing the same language under two different parent
// nodes, must end up in two distinct combined groups.
func TestExtractSegments_CombinedKeyDistinguishesParentScopes(t *testing.T) {
	src := []byte(`echo hi;echo ho;echo ab;echo cd`)
	parentA := wtesting.NewFakeByteNode("call", 0, 15)
	parentB := wtesting.NewFakeByteNode("call", 16, 31)

	c1 := wtesting.NewFakeByteNode("string", 0, 7)
	c1.ParentNode = parentA
	c2 := wtesting.NewFakeByteNode("string", 8, 15)
	c2.ParentNode = parentA
	c3 := wtesting.NewFakeByteNode("string", 16, 23)
	c3.ParentNode = parentB
	c4 := wtesting.NewFakeByteNode("string", 24, 31)
	c4.ParentNode = parentB

	forms := map[int][]PredicateForm{0: {combinedForm(), setLanguageForm("bash")}}
	matches := []Match{matchForContent(c1), matchForContent(c2), matchForContent(c3), matchForContent(c4)}
	query := wtesting.NewFakeQuery(matches, forms)

	segments := ExtractSegments(query, wtesting.NewFakeByteNode("source_file", 0, uint32(len(src))), src, nil)
	require.Len(t, segments, 4)

	assert.Equal(t, segments[0].CombinedKey, segments[1].CombinedKey, "siblings under the same parent scope must share a combined key")
	assert.Equal(t, segments[2].CombinedKey, segments[3].CombinedKey, "siblings under the same parent scope must share a combined key")
	assert.NotEqual(t, segments[1].CombinedKey, segments[2].CombinedKey, "unrelated combined groups under different parents must not merge")
}

func TestDropOverlapping_KeepsNonOverlapping(t *testing.T) {
	segs := []Segment{
		{Language: "a", ByteRange: ByteRange{Start: 0, End: 5}},
		{Language: "b", ByteRange: ByteRange{Start: 5, End: 10}},
	}
	kept := dropOverlapping(segs, nil)
	require.Len(t, kept, 2)
}
