// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"regexp"
	"strings"
)

// gsubPattern applies a restricted, Lua-pattern-flavored substitution to
// s, as `#gsub!` predicates do (spec §4.3 step 2, §9: "a restricted
// regex-like form, not full regex"). Lua patterns share most of their
// syntax with regular expressions (anchors, `*`/`+`/`-`/`?` quantifiers,
// character classes) but use `%` instead of `\` for escapes and
// backreferences (`%1`..`%9` instead of `$1`..`$9`), and the shorthand
// classes `%a`/`%d`/`%s`/`%w`/`%l`/`%u`/`%p` instead of Perl's `\a` etc.
//
// Rather than implement Lua's pattern matcher from scratch, this
// translates the restricted subset query authors actually use for
// injection language normalization (case folding, trimming a capture's
// surrounding punctuation) into an equivalent Go regexp, then replays
// the translated replacement through regexp.ReplaceAllString.
func gsubPattern(s, pattern, replacement string) string {
	re, err := translateLuaPattern(pattern)
	if err != nil {
		// Malformed pattern: return s unchanged (no substitution) rather
		// than panic — the caller already logs a QueryError upstream for
		// genuinely uncompilable queries.
		return s
	}
	return re.ReplaceAllString(s, translateLuaReplacement(replacement))
}

// luaClassToRE maps Lua's single-letter character classes to their
// (near-equivalent) Go regexp shorthand.
var luaClassToRE = map[byte]string{
	'a': `[A-Za-z]`,
	'A': `[^A-Za-z]`,
	'd': `[0-9]`,
	'D': `[^0-9]`,
	'l': `[a-z]`,
	'L': `[^a-z]`,
	'p': `[[:punct:]]`,
	'P': `[^[:punct:]]`,
	's': `\s`,
	'S': `\S`,
	'u': `[A-Z]`,
	'U': `[^A-Z]`,
	'w': `[0-9A-Za-z]`,
	'W': `[^0-9A-Za-z]`,
}

// translateLuaPattern converts the restricted Lua pattern dialect used by
// injection query helpers into a compiled Go regexp. Supported syntax:
// literal characters, `.`, `^`/`$` anchors, `*`/`+`/`-`/`?` quantifiers
// (Lua's `-` is regex's non-greedy `*?`), `%x` class/escape shorthands,
// and parenthesized capture groups.
func translateLuaPattern(pattern string) (*regexp.Regexp, error) {
	var out strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '%':
			i++
			if i >= len(pattern) {
				out.WriteByte('%')
				break
			}
			cls := pattern[i]
			if re, ok := luaClassToRE[cls]; ok {
				out.WriteString(re)
			} else {
				// %-escaped literal (e.g. %. %( %%)
				out.WriteString(regexp.QuoteMeta(string(cls)))
			}
		case '-':
			// Lua's "-" is a lazy "*"; the preceding atom already landed
			// in out, so just append the lazy-star modifier.
			out.WriteString("*?")
		default:
			out.WriteByte(c)
		}
	}
	return regexp.Compile(out.String())
}

// translateLuaReplacement rewrites Lua-style `%1`..`%9` backreferences
// into Go regexp's `$1`..`$9` form; a literal `%%` becomes a literal
// `%`.
func translateLuaReplacement(replacement string) string {
	var out strings.Builder
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c == '%' && i+1 < len(replacement) {
			next := replacement[i+1]
			if next >= '0' && next <= '9' {
				out.WriteByte('$')
				out.WriteByte(next)
				i++
				continue
			}
			if next == '%' {
				out.WriteByte('%')
				i++
				continue
			}
		}
		out.WriteByte(c)
	}
	return out.String()
}
