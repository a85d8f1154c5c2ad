// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

// lineStarts returns the byte offset of the first byte of each line in
// src, so that a tree-sitter Point{Row, Column} can be converted to a
// byte offset via lineStarts[Row] + Column.
func lineStarts(src []byte) []uint32 {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i)+1)
		}
	}
	return starts
}

// pointToByte converts a Point to a byte offset into the document the
// lineStarts table was built from, clamping to [0, len] if the point's
// row is out of range.
func pointToByte(starts []uint32, docLen uint32, p Point) uint32 {
	if int(p.Row) >= len(starts) {
		return docLen
	}
	b := starts[p.Row] + p.Column
	if b > docLen {
		return docLen
	}
	return b
}

// indentPrefixAt returns the run of leading horizontal whitespace at the
// start of the line containing byte offset pos (spec §3 "indent_prefix").
func indentPrefixAt(src []byte, pos uint32) string {
	start := pos
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < uint32(len(src)) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
