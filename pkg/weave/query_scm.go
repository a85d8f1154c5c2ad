// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"strings"
)

// PredicateArg is one argument to a `#predicate!` form: either a capture
// reference (`@name`) or a string literal.
type PredicateArg struct {
	IsCapture bool
	Capture   string
	Literal   string
}

// PredicateForm is one parsed `(#name! arg...)` form attached to a single
// top-level pattern in an injection query (spec §6 "injection query
// predicates": `#match?`, `#not-match?`, `#eq?`, `#offset!`, `#escape!`,
// `#trim!`, `#gsub!`, `#set!`).
type PredicateForm struct {
	Name string
	Args []PredicateArg
}

// parsePatternPredicates scans raw tree-sitter query source and returns,
// for each top-level pattern (in source order — tree-sitter numbers
// pattern indices the same way), the list of `#predicate!`/`#set!` forms
// textually attached to it.
//
// This is a small hand-rolled S-expression scanner rather than a call
// into the underlying binding's predicate API: the engine needs the raw
// `(#foo! @cap "lit")` forms verbatim (including ones the binding itself
// has no opinion about, like `#offset!`/`#escape!`/`#trim!`/`#gsub!`,
// which are conventions layered on top of vanilla tree-sitter query
// syntax, not part of the query language itself). Compiling this once at
// query-load time and reusing the result on every match evaluation is the
// "per-match evaluator closure" Design Notes §9 describes.
func parsePatternPredicates(src []byte) [][]PredicateForm {
	s := string(src)
	var patterns [][]PredicateForm

	depth := 0
	var cur []PredicateForm
	i := 0
	n := len(s)

	for i < n {
		c := s[i]
		switch {
		case c == ';':
			// line comment to end of line
			for i < n && s[i] != '\n' {
				i++
			}
			continue
		case c == '"':
			i++
			for i < n && s[i] != '"' {
				if s[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			i++
			continue
		case c == '(':
			if isPredicateOpen(s, i) {
				form, next := parsePredicateForm(s, i)
				if form != nil {
					cur = append(cur, *form)
				}
				i = next
				continue
			}
			if depth == 0 {
				cur = nil
			}
			depth++
			i++
			continue
		case c == ')':
			depth--
			i++
			if depth == 0 {
				patterns = append(patterns, cur)
				cur = nil
			}
			continue
		default:
			i++
		}
	}

	return patterns
}

// isPredicateOpen reports whether the '(' at index i opens a predicate
// form, i.e. is immediately followed by optional whitespace and '#'.
func isPredicateOpen(s string, i int) bool {
	j := i + 1
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	return j < len(s) && s[j] == '#'
}

// parsePredicateForm parses a single `(#name! arg...)` form starting at
// the '(' at index start. It returns the parsed form (nil if malformed)
// and the index just past the matching ')'.
func parsePredicateForm(s string, start int) (*PredicateForm, int) {
	i := start + 1
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	nameStart := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != ')' && s[i] != '\n' {
		i++
	}
	name := s[nameStart:i]

	var args []PredicateArg
	for i < len(s) && s[i] != ')' {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
			i++
		}
		if i >= len(s) || s[i] == ')' {
			break
		}
		if s[i] == '@' {
			j := i + 1
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != ')' && s[j] != '\n' {
				j++
			}
			args = append(args, PredicateArg{IsCapture: true, Capture: s[i+1 : j]})
			i = j
			continue
		}
		if s[i] == '"' {
			j := i + 1
			var lit strings.Builder
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				lit.WriteByte(s[j])
				j++
			}
			args = append(args, PredicateArg{Literal: lit.String()})
			i = j + 1
			continue
		}
		// bare atom (e.g. a boolean literal used by #set!)
		j := i
		for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != ')' && s[j] != '\n' {
			j++
		}
		args = append(args, PredicateArg{Literal: s[i:j]})
		i = j
	}
	if i < len(s) && s[i] == ')' {
		i++
	}
	if name == "" {
		return nil, i
	}
	return &PredicateForm{Name: name, Args: args}, i
}
