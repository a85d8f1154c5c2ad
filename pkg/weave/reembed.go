// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"sort"
	"strconv"
	"strings"
)

// ReembedGroup is the replacement unit the Re-embedding Engine consumes:
// either a single standalone segment (len(Members) == 1, CombinedKey
// empty) or every member of one combined group sharing a single
// formatter invocation's output (spec §4.4).
type ReembedGroup struct {
	Members   []Segment
	Formatted string
}

// GroupSegments buckets segments into ReembedGroups, keeping combined
// members together (in source order) under one group and giving every
// standalone segment its own single-member group. formatted supplies
// the formatter output keyed by group: for a standalone segment, its own
// formatted text; for a combined group, the single blob produced by
// formatting the members' `\n`-joined content (spec §3 Invariants,
// §4.4).
func GroupSegments(segments []Segment, formatted map[string]string) []ReembedGroup {
	order := make([]string, 0, len(segments))
	buckets := make(map[string][]Segment)

	for i, seg := range segments {
		key := seg.CombinedKey
		if key == "" {
			// give every standalone segment a unique key so it gets its
			// own single-member group
			key = standaloneKey(i)
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], seg)
	}

	groups := make([]ReembedGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, ReembedGroup{
			Members:   buckets[key],
			Formatted: formatted[key],
		})
	}
	return groups
}

func standaloneKey(i int) string {
	return "\x00standalone\x00" + strconv.Itoa(i)
}

// Reembed rebuilds host by splicing each group's formatted replacement
// into place (spec §4.4). Groups must be derived from non-overlapping
// segments sorted by ByteRange.Start (GroupSegments preserves this
// given sorted input). Returns the rebuilt text and any
// *ConsistencyError encountered for combined groups whose formatted
// output didn't split into exactly len(Members) pieces — those groups
// keep their original host bytes and formatting continues for every
// other group (spec §4.4, §7).
func Reembed(host []byte, groups []ReembedGroup) ([]byte, []error) {
	var out []byte
	var errs []error
	cursor := uint32(0)

	// Flatten to (segment, replacement) pairs in byte order; keep set
	// means "keep original host bytes for this member".
	type replacement struct {
		seg  Segment
		text string
		keep bool
	}
	var reps []replacement

	for _, g := range groups {
		if len(g.Members) == 1 && g.Members[0].CombinedKey == "" {
			reps = append(reps, replacement{seg: g.Members[0], text: g.Formatted})
			continue
		}

		pieces := strings.Split(g.Formatted, "\n")
		if len(pieces) != len(g.Members) {
			errs = append(errs, &ConsistencyError{
				Kind: ConsistencyCombinedCountMismatch,
				Detail: "combined group produced " + strconv.Itoa(len(pieces)) +
					" lines for " + strconv.Itoa(len(g.Members)) + " members",
			})
			for _, m := range g.Members {
				reps = append(reps, replacement{seg: m, keep: true})
			}
			continue
		}
		for i, m := range g.Members {
			reps = append(reps, replacement{seg: m, text: pieces[i]})
		}
	}

	// reps must be replayed in host byte order regardless of group
	// order, since a combined group's members can interleave with other
	// segments in the document.
	sort.Slice(reps, func(i, j int) bool {
		return reps[i].seg.ByteRange.Start < reps[j].seg.ByteRange.Start
	})

	for _, r := range reps {
		if r.seg.ByteRange.Start < cursor {
			// overlap should already have been resolved at extraction
			// time; defensively skip rather than corrupt output.
			continue
		}
		out = append(out, host[cursor:r.seg.ByteRange.Start]...)
		if r.keep {
			out = append(out, host[r.seg.ByteRange.Start:r.seg.ByteRange.End]...)
		} else {
			out = append(out, reembedOne(r.text, r.seg)...)
		}
		cursor = r.seg.ByteRange.End
	}
	out = append(out, host[cursor:]...)

	return out, errs
}

// reembedOne applies the per-segment re-escape and re-indent rules to
// one formatted fragment (spec §4.4 steps 1-4). Step 5 (undoing the
// #offset! trim) needs no code here: Reembed only ever replaces
// seg.ByteRange, so the delimiter bytes the offset trimmed away (outside
// ByteRange but inside the original capture) are never touched and
// remain exactly as in the host.
func reembedOne(formatted string, seg Segment) []byte {
	escaped := reescape(formatted, seg.EscapeChars)
	lines := strings.Split(escaped, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = seg.IndentPrefix + lines[i]
	}
	return []byte(strings.Join(lines, "\n"))
}

// reescape prepends a backslash to every rune in chars, in source order.
func reescape(s string, chars map[rune]struct{}) string {
	if len(chars) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if _, ok := chars[r]; ok {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unescape strips one leading backslash from before every rune in
// chars, the inverse of reescape. A segment's captured text is still
// escaped the way it appeared in the host (spec §4.3 step 4, §4.5 step
// 3: "must be unescaped... before formatting and re-escaped after"), so
// this runs before the content is handed to a child formatter and
// reescape undoes it again once the formatter returns.
func unescape(s string, chars map[rune]struct{}) string {
	if len(chars) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			if _, ok := chars[runes[i+1]]; ok {
				b.WriteRune(runes[i+1])
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
