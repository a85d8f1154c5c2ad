// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveCachesParserAndQuery(t *testing.T) {
	r := NewRegistry(BuiltinGrammars{}, nil)
	defer r.Close()

	parser1, query1, err := r.Resolve("go")
	require.NoError(t, err)
	require.NotNil(t, parser1)
	require.NotNil(t, query1)

	parser2, query2, err := r.Resolve("go")
	require.NoError(t, err)
	assert.Same(t, parser1, parser2)
	assert.Same(t, query1, query2)
}

func TestRegistry_UnknownLanguageIsGrammarUnavailable(t *testing.T) {
	r := NewRegistry(BuiltinGrammars{}, nil)
	defer r.Close()

	_, _, err := r.Resolve("markdown")
	require.Error(t, err)
	var gerr *GrammarUnavailableError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "markdown", gerr.Language)

	// A second Resolve on the same miss reuses the cached negative result.
	_, _, err = r.Resolve("markdown")
	require.Error(t, err)
}

func TestRegistry_LanguageWithNoBundledQueryStillResolves(t *testing.T) {
	r := NewRegistry(BuiltinGrammars{}, nil)
	defer r.Close()

	// python has a grammar but no bundled injections.scm: it is only
	// ever an injection target, never a source (grammars_builtin.go).
	parser, query, err := r.Resolve("python")
	require.NoError(t, err)
	require.NotNil(t, parser)
	assert.Nil(t, query)
}

func TestRegistry_QueryPathOverrideWinsOverBundledDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "go"), 0o755))
	override := `((comment) @injection.content (#set! injection.language "text"))`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go", "injections.scm"), []byte(override), 0o644))

	r := NewRegistry(BuiltinGrammars{}, []string{dir})
	defer r.Close()

	_, query, err := r.Resolve("go")
	require.NoError(t, err)
	require.NotNil(t, query)
	// The override query has a single pattern with one #set! form; the
	// bundled default has two patterns (string and raw-string SQL
	// injection), so this distinguishes which query text actually won.
	assert.Len(t, query.Predicates(0), 1)
	assert.Nil(t, query.Predicates(1))
}
