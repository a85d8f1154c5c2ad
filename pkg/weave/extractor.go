// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"log/slog"
	"sort"
	"strconv"
)

// ExtractSegments runs query over root (spec §4.3), resolving every
// match's predicates into a Segment. Overlapping segments are resolved
// by dropping the later-starting one, per step 7; the dropped segment
// is reported via logger at warn level.
//
// The extractor never recurses — recursion over nested injections is
// driven by the Pipeline (spec §4.5).
func ExtractSegments(query CompiledQuery, root Node, src []byte, logger *slog.Logger) []Segment {
	if query == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	starts := lineStarts(src)
	docLen := uint32(len(src))

	matches := query.Matches(root, src)
	var segments []Segment

	for _, m := range matches {
		forms := query.Predicates(m.PatternIndex)
		resolved := evaluateMatch(forms, m, src)
		if !resolved.Keep || resolved.Content == nil || resolved.Language == "" {
			continue
		}

		raw := ByteRange{Start: resolved.Content.StartByte(), End: resolved.Content.EndByte()}
		byteRange := applyOffset(raw, resolved.Content, resolved.Offset, starts, docLen)

		seg := Segment{
			Language:     resolved.Language,
			ByteRange:    byteRange,
			EscapeChars:  resolved.Escape,
			Offset:       resolved.Offset,
			Trim:         resolved.Trim,
			IndentPrefix: indentPrefixAt(src, byteRange.Start),
			rawCapture:   raw,
		}
		if resolved.Combined {
			seg.CombinedKey = combinedKey(resolved.Language, resolved.Content)
		}
		segments = append(segments, seg)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].ByteRange.Start < segments[j].ByteRange.Start
	})

	kept := dropOverlapping(segments, logger)
	recordSegmentsDiscovered(len(kept))
	return kept
}

// combinedKey derives the (parent_injection_site, language) key spec §3
// and §4.3 step 6 key combined grouping by: content's immediate parent
// node anchors "parent scope", since the query language this engine
// supports (spec §9 Design Notes) has no capture reserved for an
// explicit enclosing-scope node. Keying by language alone would merge
// two unrelated combined groups of the same language anywhere in one
// document into a single cross-site group.
func combinedKey(language string, content Node) string {
	if content == nil {
		return language
	}
	parent := content.Parent()
	if parent == nil {
		return language
	}
	return language + "\x00" + strconv.FormatUint(uint64(parent.StartByte()), 10) +
		":" + strconv.FormatUint(uint64(parent.EndByte()), 10)
}

// applyOffset applies an #offset! delta to content's range, clamping the
// result to content's own byte range if the delta would otherwise cross
// the original capture boundary (spec §9 Open Question: "the
// recommended rule is to clamp to the capture").
func applyOffset(raw ByteRange, content Node, off Offset, starts []uint32, docLen uint32) ByteRange {
	if off.IsZero() {
		return raw
	}

	startPoint := content.StartPoint()
	endPoint := content.EndPoint()

	adjStart := Point{
		Row:    addDelta(startPoint.Row, off.StartRow),
		Column: addDelta(startPoint.Column, off.StartCol),
	}
	adjEnd := Point{
		Row:    addDelta(endPoint.Row, off.EndRow),
		Column: addDelta(endPoint.Column, off.EndCol),
	}

	newStart := pointToByte(starts, docLen, adjStart)
	newEnd := pointToByte(starts, docLen, adjEnd)

	if newStart < raw.Start {
		newStart = raw.Start
	}
	if newEnd > raw.End {
		newEnd = raw.End
	}
	if newEnd < newStart {
		newEnd = newStart
	}

	return ByteRange{Start: newStart, End: newEnd}
}

// addDelta adds a (possibly negative) delta to a uint32 row/column,
// floored at zero.
func addDelta(v uint32, delta int) uint32 {
	n := int(v) + delta
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// dropOverlapping removes the later-starting segment of any overlapping
// pair, preserving source order among survivors (spec §4.3 step 7, §3
// Invariants: "Segments for a single host document are non-overlapping
// and sorted by byte_range.start").
func dropOverlapping(segments []Segment, logger *slog.Logger) []Segment {
	if len(segments) < 2 {
		return segments
	}
	out := segments[:1]
	for _, s := range segments[1:] {
		last := out[len(out)-1]
		if s.ByteRange.Overlaps(last.ByteRange) {
			logger.Warn("weave.extractor.overlap_dropped",
				"language", s.Language,
				"start", s.ByteRange.Start,
				"end", s.ByteRange.End,
			)
			recordOverlapDropped()
			continue
		}
		out = append(out, s)
	}
	return out
}
