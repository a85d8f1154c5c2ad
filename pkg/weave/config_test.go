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

const sampleConfig = `
print_width: 80
query_paths:
  - ./queries
formatters:
  go:
    - name: gofmt
      command: gofmt
  sql:
    - name: sqlfmt
      command: sqlfmt
      args: ["-"]
plugins:
  jsfmt:
    path: ./plugins/jsfmt.wasm
    languages: [javascript]
profiles:
  ci:
    print_width: 100
    formatters:
      go:
        - name: gofumpt
          command: gofumpt
  narrow:
    print_width: 40
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig_ParsesFormattersAndPlugins(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.PrintWidth)
	require.Contains(t, cfg.Formatters, "go")
	assert.Equal(t, "gofmt", cfg.Formatters["go"][0].Name)
	require.Contains(t, cfg.Plugins, "jsfmt")
	assert.Equal(t, []string{"javascript"}, cfg.Plugins["jsfmt"].Languages)
}

func TestLoadConfig_MissingFileIsConfigurationError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestWithProfile_ScalarReplacesAndFormattersFullyReplacePerLanguage(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	merged, err := cfg.WithProfile("ci")
	require.NoError(t, err)

	assert.Equal(t, 100, merged.PrintWidth)
	// "go" fully replaces the base chain rather than appending to it.
	require.Len(t, merged.Formatters["go"], 1)
	assert.Equal(t, "gofumpt", merged.Formatters["go"][0].Name)
	// "sql", untouched by the profile, survives from the base config.
	require.Contains(t, merged.Formatters, "sql")
	assert.Equal(t, "sqlfmt", merged.Formatters["sql"][0].Name)
}

func TestWithProfile_NarrowReplacesScalarKeepsBaseFormatters(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	merged, err := cfg.WithProfile("narrow")
	require.NoError(t, err)

	assert.Equal(t, 40, merged.PrintWidth)
	// "narrow" names no formatters entry at all, so the base formatters
	// survive untouched.
	assert.Equal(t, cfg.Formatters["go"], merged.Formatters["go"])
}

func TestWithProfile_UnknownProfileIsConfigurationError(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = cfg.WithProfile("does-not-exist")
	require.Error(t, err)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestWithProfile_EmptyNameIsNoOp(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	same, err := cfg.WithProfile("")
	require.NoError(t, err)
	assert.Same(t, cfg, same)
}
