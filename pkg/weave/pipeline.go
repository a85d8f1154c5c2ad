// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// MinPrintWidth is the floor print width propagated to a nested
// injection no matter how deep the nesting or how large the
// surrounding indent (spec §9 Design Notes: "narrow the width per
// level, but never below a floor").
const MinPrintWidth = 20

// Pipeline drives the recursive format_document algorithm of spec §4.5:
// parse, extract, recurse into every segment with a narrowed print
// width, reembed, then format the resulting host text.
type Pipeline struct {
	Registry *Registry
	Runners  *RunnerSet
	Logger   *slog.Logger

	// VerifyReparse re-parses a document under its own grammar after the
	// root formatter has run and rejects the formatter's output (falling
	// back to the reembedded, not root-formatted text, spec §7
	// ConsistencyPostFormatParseFailure) if the reparse reports a syntax
	// error. It has no effect when the root format is skipped. Disabled
	// by default since it costs a full extra parse per document.
	VerifyReparse bool
}

// NewPipeline builds a Pipeline over registry and runners with a
// default (nil) logger resolved to slog.Default().
func NewPipeline(registry *Registry, runners *RunnerSet) *Pipeline {
	return &Pipeline{Registry: registry, Runners: runners, Logger: slog.Default()}
}

// FormatDocument runs the full recursive pipeline on doc. skipRootFormat
// suppresses the final formatter invocation on doc's own language,
// returning only the text with every nested injection formatted and
// reembedded — used when a caller already ran (or intends to run) the
// host-language formatter itself and wants weave to handle only the
// embedded regions (spec §4.5, §6 CLI surface).
//
// The returned warnings are the non-fatal *ConsistencyError /
// *FormatterError / *GrammarUnavailableError / *QueryError values
// accumulated from preserved segments or skipped reembeds. The error
// return is non-nil only for a failure at the root (spec §7: fatal only
// at the root): the root document's own parser or query is unavailable,
// or its formatter fails. When no formatter is configured for the root
// language, the reembedded text is returned unformatted and that
// *FormatterError is reported among the warnings. The returned text is
// always a best-effort result, never nil.
func (p *Pipeline) FormatDocument(ctx context.Context, doc Document, skipRootFormat bool) ([]byte, []error, error) {
	defer func(start time.Time) {
		weaveMetrics.init()
		weaveMetrics.documentDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parser, query, err := p.Registry.Resolve(doc.Language)
	if err != nil {
		return doc.Text, nil, err
	}

	width := doc.PrintWidth
	if width < MinPrintWidth {
		width = MinPrintWidth
	}

	body, warnings := p.recurse(ctx, doc.Text, doc.Language, parser, query, width, logger)

	if skipRootFormat {
		return body, warnings, nil
	}

	formatted, ferr := p.Runners.Format(ctx, body, doc.Language, width)
	if ferr != nil {
		if fe, ok := ferr.(*FormatterError); ok && fe.Kind == FormatterErrorNotInstalled && fe.Formatter == "" {
			// nothing configured for the root language: keep the reembedded text
			logger.Warn("weave.pipeline.root_format_skipped", "language", doc.Language, "error", ferr)
			return body, append(warnings, ferr), nil
		}
		logger.Warn("weave.pipeline.root_format_failed", "language", doc.Language, "error", ferr)
		return body, warnings, ferr
	}

	if p.VerifyReparse && !p.reparsesClean(ctx, parser, formatted) {
		warnings = append(warnings, &ConsistencyError{
			Kind:   ConsistencyPostFormatParseFailure,
			Detail: "formatted " + doc.Language + " document failed to reparse cleanly; keeping pre-format text",
		})
		return body, warnings, nil
	}

	return formatted, warnings, nil
}

// recurse extracts doc's injection segments, recursively formats each
// (narrowing print width per level), reembeds the results, and returns
// the rebuilt text plus every non-fatal warning encountered along the
// way. It never returns an error itself: a segment that cannot be
// parsed, queried, or formatted is Preserved (its original host bytes
// kept) and its failure is reported as a warning, per spec §7's
// segment-level error policy.
func (p *Pipeline) recurse(ctx context.Context, text []byte, language string, parser ParserHandle, query CompiledQuery, width int, logger *slog.Logger) ([]byte, []error) {
	if query == nil {
		return text, nil
	}

	tree, err := parser.Parse(ctx, text)
	if err != nil {
		logger.Warn("weave.pipeline.parse_failed", "language", language, "error", err)
		return text, []error{err}
	}
	defer tree.Close()

	segments := ExtractSegments(query, tree.RootNode(), text, logger)
	if len(segments) == 0 {
		return text, nil
	}

	var warnings []error
	keys, groupsOf := bucketSegments(segments)
	keyed := make([]ReembedGroup, 0, len(keys))

	for gi, key := range keys {
		members := groupsOf[gi]
		childWidth := narrowWidth(width, members[0].IndentPrefix)
		childLang := members[0].Language

		var content strings.Builder
		for i, m := range members {
			if i > 0 {
				content.WriteByte('\n')
			}
			raw := trimSegment(text[m.ByteRange.Start:m.ByteRange.End], m.Trim)
			piece := unescape(string(raw), m.EscapeChars)
			if m.IndentPrefix != "" {
				// inverse of Reembed's re-indent: strip the host indent
				// from every line after the first
				lines := strings.Split(piece, "\n")
				for j := 1; j < len(lines); j++ {
					lines[j] = strings.TrimPrefix(lines[j], m.IndentPrefix)
				}
				piece = strings.Join(lines, "\n")
			}
			content.WriteString(piece)
		}

		childParser, childQuery, err := p.Registry.Resolve(childLang)
		if err != nil {
			logger.Warn("weave.pipeline.segment_preserved", "key", key, "language", childLang, "reason", "grammar_unavailable")
			warnings = append(warnings, err)
			recordSegmentPreserved()
			keyed = append(keyed, ReembedGroup{Members: members})
			continue
		}

		childDoc := content.String()
		recursed, childWarnings := p.recurse(ctx, []byte(childDoc), childLang, childParser, childQuery, childWidth, logger)
		warnings = append(warnings, childWarnings...)

		formatted, ferr := p.Runners.Format(ctx, recursed, childLang, childWidth)
		if ferr != nil {
			logger.Warn("weave.pipeline.segment_preserved", "key", key, "language", childLang, "reason", "formatter_error", "error", ferr)
			warnings = append(warnings, ferr)
			if fe, ok := ferr.(*FormatterError); ok {
				recordFormatterError(fe.Kind)
			}
			recordSegmentPreserved()
			keyed = append(keyed, ReembedGroup{Members: members})
			continue
		}
		recordFormatterSuccess()
		recordSegmentFormatted()

		keyed = append(keyed, ReembedGroup{Members: members, Formatted: string(formatted)})
	}

	out, reembedErrs := reembedPreservingMissing(text, keyed)
	warnings = append(warnings, reembedErrs...)

	return out, warnings
}

// bucketSegments groups segments sharing a non-empty CombinedKey
// together, in first-appearance order, giving every standalone segment
// its own single-member group. It returns a parallel key slice purely
// for diagnostics; group identity is carried directly via the returned
// member slices, so callers never need to re-derive a key to look
// anything up by (unlike GroupSegments, which is keyed for external
// callers supplying a formatted map up front).
func bucketSegments(segments []Segment) ([]string, [][]Segment) {
	var order []string
	buckets := make(map[string][]Segment)

	for i, seg := range segments {
		key := seg.CombinedKey
		if key == "" {
			key = standaloneKey(i)
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], seg)
	}

	groups := make([][]Segment, len(order))
	for i, key := range order {
		groups[i] = buckets[key]
	}
	return order, groups
}

// reembedPreservingMissing calls Reembed, but first substitutes each
// group's own member byte ranges verbatim wherever Format failed for
// that group (Formatted == ""). Extraction keeps empty segments, so an
// empty segment that formats to empty text takes the same path, which
// splices back the same empty bytes.
func reembedPreservingMissing(host []byte, groups []ReembedGroup) ([]byte, []error) {
	kept := make([]ReembedGroup, 0, len(groups))
	var preserved []error
	for _, g := range groups {
		if g.Formatted == "" && len(g.Members) > 0 {
			// Preserve verbatim: each member becomes its own group whose
			// "formatted" text is its host bytes, with no combined split,
			// re-escape or re-indent, so Reembed's splice is a no-op.
			for _, m := range g.Members {
				m.CombinedKey = ""
				m.EscapeChars = nil
				m.IndentPrefix = ""
				kept = append(kept, ReembedGroup{Members: []Segment{m}, Formatted: string(host[m.ByteRange.Start:m.ByteRange.End])})
			}
			continue
		}
		kept = append(kept, g)
	}
	out, errs := Reembed(host, kept)
	for _, e := range errs {
		if ce, ok := e.(*ConsistencyError); ok {
			recordConsistencyError(ce.Kind)
		}
	}
	preserved = append(preserved, errs...)
	return out, preserved
}

// narrowWidth applies the per-level width narrowing rule: shrink by the
// member's indent width, floored at MinPrintWidth (spec §9).
func narrowWidth(width int, indentPrefix string) int {
	w := width - len(indentPrefix)
	if w < MinPrintWidth {
		return MinPrintWidth
	}
	return w
}

// trimSegment applies a segment's #trim! directive to its raw bytes
// before it is handed to a child formatter (spec §4.3 step 5).
func trimSegment(raw []byte, trim Trim) []byte {
	if !trim.TrimLeadingBlankLines && !trim.TrimTrailingBlankLines {
		return raw
	}
	lines := strings.Split(string(raw), "\n")
	start, end := 0, len(lines)
	if trim.TrimLeadingBlankLines {
		for start < end && strings.TrimSpace(lines[start]) == "" {
			start++
		}
	}
	if trim.TrimTrailingBlankLines {
		for end > start && strings.TrimSpace(lines[end-1]) == "" {
			end--
		}
	}
	return []byte(strings.Join(lines[start:end], "\n"))
}

// reparsesClean reports whether text parses without a syntax error
// under parser, used by VerifyReparse.
func (p *Pipeline) reparsesClean(ctx context.Context, parser ParserHandle, text []byte) bool {
	tree, err := parser.Parse(ctx, text)
	if err != nil {
		return false
	}
	defer tree.Close()
	return !tree.RootNode().HasError()
}
