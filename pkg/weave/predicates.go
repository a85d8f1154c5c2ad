// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"regexp"
	"strconv"
)

// resolvedInjection is everything the predicate evaluator derives from
// one query match: whether it survives the match's filter predicates,
// the language tag, the content range, and the offset/escape/trim/
// combined directives attached to it (spec §4.3 steps 2-6).
type resolvedInjection struct {
	Keep     bool
	Language string
	Content  Node
	Offset   Offset
	Escape   map[rune]struct{}
	Trim     Trim
	Combined bool
}

// captureSet indexes a match's captures by name for predicate
// evaluation; a capture name may repeat across alternative branches of a
// pattern, in which case the first binding wins.
type captureSet map[string]Node

func newCaptureSet(m Match) captureSet {
	cs := make(captureSet, len(m.Captures))
	for _, c := range m.Captures {
		if _, ok := cs[c.Name]; !ok {
			cs[c.Name] = c.Node
		}
	}
	return cs
}

func (cs captureSet) text(name string, src []byte) (string, bool) {
	n, ok := cs[name]
	if !ok {
		return "", false
	}
	return string(src[n.StartByte():n.EndByte()]), true
}

// evaluateMatch compiles one query match into a resolvedInjection,
// applying every predicate form attached to the match's pattern in
// source order (Design Notes §9: "evaluate in match order").
func evaluateMatch(forms []PredicateForm, m Match, src []byte) resolvedInjection {
	cs := newCaptureSet(m)
	result := resolvedInjection{Keep: true, Escape: map[rune]struct{}{}}

	if content, ok := cs["injection.content"]; ok {
		result.Content = content
	}
	if langText, ok := cs["injection.language"]; ok {
		result.Language = string(src[langText.StartByte():langText.EndByte()])
	}

	for _, f := range forms {
		switch f.Name {
		case "match?", "not-match?":
			if len(f.Args) != 2 || !f.Args[0].IsCapture || f.Args[1].IsCapture {
				continue
			}
			text, ok := cs.text(f.Args[0].Capture, src)
			if !ok {
				continue
			}
			re, err := regexp.Compile(f.Args[1].Literal)
			if err != nil {
				continue
			}
			matched := re.MatchString(text)
			if f.Name == "not-match?" {
				matched = !matched
			}
			if !matched {
				result.Keep = false
			}

		case "eq?":
			if len(f.Args) != 2 {
				continue
			}
			left, leftOK := resolveArg(cs, f.Args[0], src)
			right, rightOK := resolveArg(cs, f.Args[1], src)
			if !leftOK || !rightOK || left != right {
				result.Keep = false
			}

		case "offset!":
			if len(f.Args) != 5 || !f.Args[0].IsCapture {
				continue
			}
			deltas := make([]int, 4)
			ok := true
			for i := 0; i < 4; i++ {
				n, err := strconv.Atoi(f.Args[i+1].Literal)
				if err != nil {
					ok = false
					break
				}
				deltas[i] = n
			}
			if ok {
				result.Offset = Offset{
					StartRow: deltas[0],
					StartCol: deltas[1],
					EndRow:   deltas[2],
					EndCol:   deltas[3],
				}
			}

		case "escape!":
			if len(f.Args) != 2 || !f.Args[0].IsCapture {
				continue
			}
			for _, r := range f.Args[1].Literal {
				result.Escape[r] = struct{}{}
			}

		case "trim!":
			result.Trim = Trim{TrimLeadingBlankLines: true, TrimTrailingBlankLines: true}

		case "gsub!":
			if len(f.Args) != 3 || !f.Args[0].IsCapture {
				continue
			}
			if f.Args[0].Capture != "injection.language" {
				continue
			}
			result.Language = gsubPattern(result.Language, f.Args[1].Literal, f.Args[2].Literal)

		case "set!":
			if len(f.Args) == 0 {
				continue
			}
			switch f.Args[0].Literal {
			case "injection.language":
				if len(f.Args) >= 2 {
					result.Language = f.Args[1].Literal
				}
			case "injection.combined":
				result.Combined = true
			}
		}
	}

	return result
}

// resolveArg returns the textual value of a predicate argument: a
// capture's source text, or a literal verbatim.
func resolveArg(cs captureSet, a PredicateArg, src []byte) (string, bool) {
	if a.IsCapture {
		return cs.text(a.Capture, src)
	}
	return a.Literal, true
}
