// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"os"
	"path/filepath"
	"sync"
)

// Registry resolves a language tag to (parser, injection_query),
// consulting configured search paths in order and caching the result
// for the lifetime of the Registry (spec §4.1, §3 "Lifecycle", §9
// "Shared caches across documents").
//
// A Registry is safe for concurrent use: Design Notes §9 calls for
// either guarding the cache with a mutual-exclusion primitive or
// building it eagerly before a parallel file phase. This Registry takes
// the former approach, since `weave format --dir` resolves languages
// lazily as each worker encounters them (spec §5.1).
type Registry struct {
	mu sync.RWMutex

	source     GrammarSource
	queryPaths []string // ordered directories searched for <lang>/injections.scm

	parsers map[string]ParserHandle
	queries map[string]CompiledQuery
	misses  map[string]struct{} // languages already found unavailable
}

// NewRegistry creates a Registry backed by source, searching queryPaths
// (in order) for a `<lang>/injections.scm` override before falling back
// to the source's own default query (spec §4.1).
func NewRegistry(source GrammarSource, queryPaths []string) *Registry {
	return &Registry{
		source:     source,
		queryPaths: queryPaths,
		parsers:    make(map[string]ParserHandle),
		queries:    make(map[string]CompiledQuery),
		misses:     make(map[string]struct{}),
	}
}

// Resolve returns the parser and compiled injection query for lang,
// consulting the cache first. If no parser is available for lang, it
// returns a *GrammarUnavailableError; callers at the root document treat
// this as fatal, callers at a segment preserve the segment verbatim
// (spec §4.1, §7).
func (r *Registry) Resolve(lang string) (ParserHandle, CompiledQuery, error) {
	r.mu.RLock()
	if _, missed := r.misses[lang]; missed {
		r.mu.RUnlock()
		return nil, nil, &GrammarUnavailableError{Language: lang}
	}
	if p, ok := r.parsers[lang]; ok {
		q := r.queries[lang] // may be nil: a language with no injections
		r.mu.RUnlock()
		return p, q, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have populated the cache while we waited for
	// the write lock.
	if _, missed := r.misses[lang]; missed {
		return nil, nil, &GrammarUnavailableError{Language: lang}
	}
	if p, ok := r.parsers[lang]; ok {
		return p, r.queries[lang], nil
	}

	tsLang, defaultQuery, err := r.source.Load(lang)
	if err != nil {
		r.misses[lang] = struct{}{}
		return nil, nil, err
	}

	queryText := r.resolveQueryOverride(lang)
	if queryText == nil {
		queryText = defaultQuery
	}

	parser := newTreesitterParser(tsLang)

	var compiled CompiledQuery
	if len(queryText) > 0 {
		compiled, err = compileInjectionQuery(tsLang, lang, queryText)
		if err != nil {
			r.misses[lang] = struct{}{}
			return nil, nil, err
		}
	}

	r.parsers[lang] = parser
	r.queries[lang] = compiled
	return parser, compiled, nil
}

// resolveQueryOverride searches r.queryPaths, in order, for
// "<path>/<lang>/injections.scm", returning the contents of the first
// one found, or nil if none of the configured paths has an override
// (spec §4.1: "the first path containing both... wins").
func (r *Registry) resolveQueryOverride(lang string) []byte {
	for _, base := range r.queryPaths {
		candidate := filepath.Join(base, lang, "injections.scm")
		if data, err := os.ReadFile(candidate); err == nil {
			return data
		}
	}
	return nil
}

// Close releases every cached parser and query. Call once the engine
// invocation is finished (spec §3 "Lifecycle").
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parsers {
		p.Close()
	}
	for _, q := range r.queries {
		if q != nil {
			q.Close()
		}
	}
}
