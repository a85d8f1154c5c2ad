// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGsubPattern_CaseFold(t *testing.T) {
	got := gsubPattern("JavaScript", "%u", "%l")
	// %l isn't a valid replacement form (only %1-%9/%% are), so each
	// matched uppercase letter is replaced literally with "%l".
	assert.Equal(t, "%lava%lcript", got)
}

func TestGsubPattern_StripSurroundingPunctuation(t *testing.T) {
	got := gsubPattern("[[sql]]", "%[+(.-)%]+", "%1")
	assert.Equal(t, "sql", got)
}

func TestGsubPattern_DigitClass(t *testing.T) {
	got := gsubPattern("js2", "%d", "")
	assert.Equal(t, "js", got)
}

func TestGsubPattern_MalformedPatternIsNoOp(t *testing.T) {
	got := gsubPattern("sql", "(unclosed", "x")
	assert.Equal(t, "sql", got)
}

func TestGsubPattern_LiteralPercent(t *testing.T) {
	got := gsubPattern("100%done", "%%", " percent ")
	assert.Equal(t, "100 percent done", got)
}
